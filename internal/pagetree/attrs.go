package pagetree

// LinkAttr holds the optional attributes of a link.
type LinkAttr struct {
	Class     string
	Title     string
	Target    string
	AccessKey string
	Rel       string
}

// ImageAttr holds the optional attributes of an image transclusion.
type ImageAttr struct {
	Class    string
	Alt      string
	Title    string
	LongDesc string
	Width    string
	Height   string
	Align    string
}

// ObjectAttr holds the optional attributes of an object transclusion.
type ObjectAttr struct {
	Class    string
	Title    string
	Width    string
	Height   string
	MimeType string
	Standby  string
}

// TableAttr holds table wide attributes, given in the first cell of a
// table with a "table" prefix (e.g. tableclass, tablestyle).
type TableAttr struct {
	Class   string
	Style   string
	ID      string
	Width   string
	Align   string
	BgColor string
}

// TableRowAttr holds row attributes, given with a "row" prefix.
type TableRowAttr struct {
	Class   string
	Style   string
	ID      string
	BgColor string
}

// TableCellAttr holds cell attributes.
type TableCellAttr struct {
	Class   string
	Style   string
	ID      string
	Width   string
	Height  string
	Align   string
	VAlign  string
	BgColor string
	Abbr    string
	ColSpan int
	RowSpan int
}
