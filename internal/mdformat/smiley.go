package mdformat

// smileyEmoji maps every MoinMoin smiley to a GitHub style emoji name.
var smileyEmoji = map[string]string{
	"X-(":  ":angry:",
	":D":   ":smiley:",
	"<:(":  ":frowning:",
	":o":   ":astonished:",
	":(":   ":frowning:",
	":)":   ":simple_smile:",
	"B)":   ":sunglasses:",
	":))":  ":laughing:",
	";)":   ":wink:",
	"/!\\": ":exclamation:",
	"<!>":  ":exclamation:",
	"(!)":  ":bulb:",
	":-?":  ":stuck_out_tongue_closed_eyes:",
	":\\":  ":astonished:",
	">:>":  ":smiling_imp:",
	"|)":   ":innocent:",
	":-(":  ":frowning:",
	":-)":  ":simple_smile:",
	"B-)":  ":sunglasses:",
	":-))": ":laughing:",
	";-)":  ":wink:",
	"|-)":  ":innocent:",
	"(./)": ":white_check_mark:",
	"{OK}": ":thumbsup:",
	"{X}":  ":x:",
	"{i}":  ":information_source:",
	"{1}":  ":one:",
	"{2}":  ":two:",
	"{3}":  ":three:",
	"{*}":  ":star:",
	"{o}":  ":star2:",
}
