package pagetree

// Kind tags the variant of a page element.
type Kind uint8

// Kind constants for every page element variant.
const (
	noKind Kind = iota // 0 value should never be seen by user

	PageRoot
	Paragraph
	Raw

	Text
	SGMLEntity

	Macro
	Comment
	Smiley
	Remark

	ParsedText
	Codeblock

	Table
	TableRow
	TableCell

	Heading
	HorizontalRule

	Underline
	Strike
	Small
	Big
	Emphasis
	Strong
	Sup
	Sub
	Code

	Link
	Pagelink
	Interwikilink
	AttachmentLink
	URL

	BulletList
	NumberList
	DefinitionList
	DefinitionTerm
	DefinitionDesc
	Listitem

	AttachmentImage
	Image
	Transclude
	AttachmentTransclude
	AttachmentInlined

	numKinds
)

var kindNames = [numKinds]string{
	noKind:               "None",
	PageRoot:             "PageRoot",
	Paragraph:            "Paragraph",
	Raw:                  "Raw",
	Text:                 "Text",
	SGMLEntity:           "SGMLEntity",
	Macro:                "Macro",
	Comment:              "Comment",
	Smiley:               "Smiley",
	Remark:               "Remark",
	ParsedText:           "ParsedText",
	Codeblock:            "Codeblock",
	Table:                "Table",
	TableRow:             "TableRow",
	TableCell:            "TableCell",
	Heading:              "Heading",
	HorizontalRule:       "HorizontalRule",
	Underline:            "Underline",
	Strike:               "Strike",
	Small:                "Small",
	Big:                  "Big",
	Emphasis:             "Emphasis",
	Strong:               "Strong",
	Sup:                  "Sup",
	Sub:                  "Sub",
	Code:                 "Code",
	Link:                 "Link",
	Pagelink:             "Pagelink",
	Interwikilink:        "Interwikilink",
	AttachmentLink:       "AttachmentLink",
	URL:                  "Url",
	BulletList:           "BulletList",
	NumberList:           "NumberList",
	DefinitionList:       "DefinitionList",
	DefinitionTerm:       "DefinitionTerm",
	DefinitionDesc:       "DefinitionDesc",
	Listitem:             "Listitem",
	AttachmentImage:      "AttachmentImage",
	Image:                "Image",
	Transclude:           "Transclude",
	AttachmentTransclude: "AttachmentTransclude",
	AttachmentInlined:    "AttachmentInlined",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "InvalidKind"
}

// IsBlock returns true for kinds that start their own block in the output:
// the top level siblings that need blank line separation.
func (k Kind) IsBlock() bool {
	switch k {
	case Paragraph, ParsedText, BulletList, NumberList, DefinitionList,
		Table, Heading, HorizontalRule:
		return true
	}
	return false
}

// IsList returns true for the three list container kinds.
func (k Kind) IsList() bool {
	return k == BulletList || k == NumberList || k == DefinitionList
}

// IsDecoration returns true for inline formatting kinds that wrap children.
func (k Kind) IsDecoration() bool {
	switch k {
	case Underline, Strike, Small, Big, Emphasis, Strong:
		return true
	}
	return false
}

// IsInline returns true for every kind that may appear inside a paragraph.
func (k Kind) IsInline() bool {
	switch k {
	case Text, SGMLEntity, Macro, Comment, Smiley, Remark,
		Underline, Strike, Small, Big, Emphasis, Strong, Sup, Sub, Code,
		Link, Pagelink, Interwikilink, AttachmentLink, URL,
		AttachmentImage, Image, Transclude, AttachmentTransclude, AttachmentInlined,
		Raw:
		return true
	}
	return false
}
