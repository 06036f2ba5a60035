package minifier

import (
	"bytes"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

func TestMinify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only whitespace", " \n\t\r\f ", ""},
		{"only comment", "/* nothing */", ""},
		{"simple rule", "a { color: red; }", "a{color: red;}"},
		{"punctuation collapse", "a  ,  b  {  color : red ;  }", "a,b{color : red;}"},
		{"string interior spacing", `a{content:"  x  "}`, `a{content:"  x  "}`},
		{"single quoted string", `a { content : '  y  ' }`, `a{content : '  y  '}`},
		{"escaped quote in string", `a{content:"say \"hi\"  "}`, `a{content:"say \"hi\"  "}`},
		{"other quote inside string", `a{content:"it's  fine"}`, `a{content:"it's  fine"}`},
		{"comment inside string", `a{content:"/* keep */"}`, `a{content:"/* keep */"}`},
		{"comment between tokens", "a/**/b{}", "a b{}"},
		{"comment before brace", "a /* x */ {color:red}", "a{color:red}"},
		{"comment after semicolon", "a{color:red;/* x */ top:0}", "a{color:red;top:0}"},
		{"multiline comment", "/*\n * header\n */\nbody {\n  margin: 0;\n}\n", "body{margin: 0;}"},
		{"value spacing kept", "a{border:1px   solid   #000}", "a{border:1px solid #000}"},
		{"tabs and newlines", "a{\n\tmargin:0\t auto;\r\n}", "a{margin:0 auto;}"},
		{"descendant selector", "ul   li   a{}", "ul li a{}"},
		{"child combinator kept", "a > b{}", "a > b{}"},
		{"calc spacing kept", "a{width:calc(100% - 2px)}", "a{width:calc(100% - 2px)}"},
		{"leading space dropped", "   a{}", "a{}"},
		{"trailing space trimmed", "a{}   ", "a{}"},
		{"media query", "@media screen and (max-width: 600px) {\n  a { top: 0 }\n}", "@media screen and (max-width: 600px){a{top: 0}}"},
		{"unquoted url", `url( foo/bar\(1\).png )`, `url(foo/bar\(1\).png)`},
		{"unquoted url in rule", "a { background : url( img/a.png ) no-repeat ; }", "a{background : url(img/a.png) no-repeat;}"},
		{"unquoted url keeps comment-like text", "a{b:url(//cdn/*x*/a.png)}", "a{b:url(//cdn/*x*/a.png)}"},
		{"unquoted url with quote inside", `a{b:url(it's.png)}`, `a{b:url(it's.png)}`},
		{"quoted url", `a{b:url( "x  y.png" )}`, `a{b:url("x  y.png" )}`},
		{"single quoted url", `a{b:url('x.png')}`, `a{b:url('x.png')}`},
		{"upper case url", "a{b:URL( x.png )}", "a{b:URL(x.png)}"},
		{"mixed case url", "a{b:Url(x.png)}", "a{b:Url(x.png)}"},
		{"whitespace before url paren kept", "a{b:url (x.png )}", "a{b:url (x.png)}"},
		{"empty url", "a{b:url( )}", "a{b:url()}"},
		{"url word without paren", "a{b:url x}", "a{b:url x}"},
		{"identifier ending in url", ".myurl(x)", ".myurl(x)"},
		{"identifier ending in url with space", "notaurl (x)", "notaurl (x)"},
		{"identifier ending in url no unquoted mode", "a{b:myurl( x )}", "a{b:myurl( x )}"},
		{"hyphen before url", "a{b:-url( x )}", "a{b:-url( x )}"},
		{"space before url flushes", "a{background:red url( x )}", "a{background:red url(x)}"},
		{"url split from paren by comment", "a{b:url/**/( x )}", "a{b:url (x)}"},
		{"url split from quoted paren by comment", `a{b:url/**/( "x" )}`, `a{b:url ("x" )}`},
		{"url split by comment and space", "a{b:url /* c */ (x )}", "a{b:url (x)}"},
		{"identifier ending in url split by comment", "a{b:myurl/**/( x )}", "a{b:myurl ( x )}"},
		{"backslash is an ordinary character", `.a\ b {}`, `.a\ b{}`},
		{"backslash before space and brace", `.a\  {}`, `.a\{}`},
		{"backslash before quote opens string", `.a\"b  c" {}`, `.a\"b  c"{}`},
		{"backslash before comment", `.a\/* x */{top:0}`, `.a\{top:0}`},
		{"non ascii text", "a{content:\"é  ü\"} .日本  語{}", "a{content:\"é  ü\"} .日本 語{}"},
		{"unterminated string", `a{color:"unterminated`, `a{color:"unterminated`},
		{"unterminated comment", "a{color:red}/* open", "a{color:red}"},
		{"unterminated url", "a{b:url( x.png", "a{b:url(x.png"},
		{"unterminated escape in url", `a{b:url(x\`, `a{b:url(x\`},
		{"dangling escape", `a\`, `a\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Minify(tt.input)
			if result != tt.expected {
				t.Errorf("Minify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMinifyBytesDoesNotAlias(t *testing.T) {
	src := []byte("a{}")
	out := MinifyBytes(src)
	out[0] = 'b'
	if string(src) != "a{}" {
		t.Errorf("MinifyBytes modified its input: %q", src)
	}
}

func TestCopy(t *testing.T) {
	var buf bytes.Buffer
	if err := Copy(&buf, strings.NewReader("a {\n  color: red;\n}\n")); err != nil {
		t.Fatalf("Copy error: %v", err)
	}
	if buf.String() != "a{color: red;}" {
		t.Errorf("Copy wrote %q, want %q", buf.String(), "a{color: red;}")
	}
}

func TestCommentElimination(t *testing.T) {
	inputs := []string{
		"a{color:red}/* secret-marker */b{top:0}",
		"/* secret-marker */",
		"a /*secret-marker*/ b",
		"a{margin:0/* secret-marker */auto}",
		".a\\/* secret-marker */{top:0}",
		"a{b:url/* secret-marker */(x)}",
	}

	for _, input := range inputs {
		result := Minify(input)
		if strings.Contains(result, "secret-marker") || strings.Contains(result, "/*") {
			t.Errorf("Minify(%q) = %q still contains the comment", input, result)
		}
	}
}

// cssFragments are the pieces the property tests build inputs from, so that
// quotes, comments, escapes and url( meet in every order.
var cssFragments = []string{
	"url", "URL", "myurl", "(", ")", "/*", "*/", "/", "*", `"`, "'", `\`,
	" ", "  ", "\n", "\t", "{", "}", ";", ",", ":", "a", "b1", "-", "_", "é",
}

func cssValues(values []reflect.Value, r *rand.Rand) {
	var b strings.Builder
	for n := r.Intn(40); n > 0; n-- {
		b.WriteString(cssFragments[r.Intn(len(cssFragments))])
	}
	values[0] = reflect.ValueOf(b.String())
}

func TestIdempotence(t *testing.T) {
	f := func(s string) bool {
		once := Minify(s)
		return Minify(once) == once
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 20000, Values: cssValues}); err != nil {
		t.Error(err)
	}

	for _, input := range realWorld {
		once := Minify(input)
		if twice := Minify(once); twice != once {
			t.Errorf("Minify is not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestLengthMonotonicity(t *testing.T) {
	f := func(s string) bool {
		return len(Minify(s)) <= len(s)
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 20000, Values: cssValues}); err != nil {
		t.Error(err)
	}
}

// TestCommentEliminationGenerated wraps a marker comment in generated text
// that closes any string or url opened before it.
func TestCommentEliminationGenerated(t *testing.T) {
	f := func(prefix, suffix string) bool {
		prefix = strings.NewReplacer(`"`, "", "'", "", "(", "", "/*", "").Replace(prefix)
		return !strings.Contains(Minify(prefix+"/* secret-marker */"+suffix), "secret-marker")
	}
	values := func(values []reflect.Value, r *rand.Rand) {
		cssValues(values[:1], r)
		cssValues(values[1:], r)
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 5000, Values: values}); err != nil {
		t.Error(err)
	}
}

// TestTokenEquivalence lexes input and output with a full CSS tokenizer and
// checks that only whitespace and comments were removed.
func TestTokenEquivalence(t *testing.T) {
	for _, input := range realWorld {
		want := significantTokens(input)
		got := significantTokens(Minify(input))

		if len(got) != len(want) {
			t.Errorf("token count changed for %q: got %d, want %d\n got: %q\nwant: %q", input, len(got), len(want), got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("token %d changed for %q: got %q, want %q", i, input, got[i], want[i])
				break
			}
		}
	}
}

func significantTokens(s string) []string {
	var tokens []string
	l := css.NewLexer(parse.NewInputString(s))
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return tokens
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.URLToken:
			tokens = append(tokens, stripWhitespace(string(data)))
		default:
			tokens = append(tokens, string(data))
		}
	}
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 128 && isWhitespace(byte(r)) {
			return -1
		}
		return r
	}, s)
}

var realWorld = []string{
	`/*! normalize-style header */
html {
  line-height: 1.15; /* 1 */
  -webkit-text-size-adjust: 100%; /* 2 */
}

body {
  margin: 0;
}

h1 , h2 , h3 {
  font-size: 2em;
  margin: 0.67em 0;
}
`,
	`@import url( "theme.css" ) screen;
@import url(print.css) print;
@charset "utf-8";
`,
	`@font-face {
  font-family: "Open Sans";
  src: url( fonts/open-sans.woff2 ) format("woff2"),
       url('fonts/open-sans.woff') format('woff');
}
`,
	`.btn:hover > .icon + .label ~ span::after {
  content: "\2192  ";
  transition: color .2s ease-in-out, background-color .2s ease-in-out;
  width: calc( 100% - (2 * 8px) );
}
`,
	`@media (min-width: 768px) and (max-width: 1024px) {
  .grid { display: grid; grid-template-columns: repeat(3, 1fr); }
  .grid > * { padding: 0 1rem !important; }
}
`,
	`a[href^="http://"] , a[target = "_blank"] { background : transparent url( ext\(1\).svg ) no-repeat right center ; }`,
	`:root{--main-color:  #06c;--accent: rgb( 0 0 0 / 50% );}
.x{color:var( --main-color )}`,
	`.a\:hover\:bg-blue:hover { background-color: #00f }
.w-1\/2 { width: 50% }
`,
}
