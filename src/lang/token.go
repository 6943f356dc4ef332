package lang

// EndKind is the kind of the token closing every token stream
const EndKind = "$"

// The token kinds of the language.  They are the terminal names used by the
// grammar.
const (
	NAME   = "name"
	NUMBER = "number"

	PRINT = "print"
	IF    = "if"
	ELSE  = "else"
	WHILE = "while"

	PLUS  = "plus"
	MINUS = "minus"
	MUL   = "mul"
	DIV   = "div"

	EQUAL        = "equal"
	DEQUAL       = "d_equal"
	GREATEREQUAL = "greater_equal"

	LPAREN    = "lparen"
	RPAREN    = "rparen"
	LBRACE    = "lbrace"
	RBRACE    = "rbrace"
	COMMA     = "comma"
	SEMICOLON = "semicolon"
)

// token patterns (matching strings) for keywords
var keywordPatterns = map[string]string{
	"print": PRINT,
	"if":    IF,
	"else":  ELSE,
	"while": WHILE,
}

// token patterns for symbolic items - longest match wins
var symbolPatterns = map[string]string{
	"+":  PLUS,
	"-":  MINUS,
	"*":  MUL,
	"/":  DIV,
	"=":  EQUAL,
	"==": DEQUAL,
	">=": GREATEREQUAL,
	"(":  LPAREN,
	")":  RPAREN,
	"{":  LBRACE,
	"}":  RBRACE,
	",":  COMMA,
	";":  SEMICOLON,
}
