package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a  b\n\tc  "))
	assert.Equal(t, "", CleanText("   "))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "GBSD work", StripHTML("<p>GBSD <b>work</b></p>"))
	assert.Equal(t, "plain text stays", StripHTML("plain   text \n stays"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"f", "35", "lightning"}, Tokenize("F-35 Lightning"))
	assert.Equal(t, []string{"ts", "sci"}, Tokenize("TS/SCI"))
	assert.Empty(t, Tokenize("  --  "))
}

func TestTokenKey(t *testing.T) {
	assert.Equal(t, "ground based", TokenKey([]string{"ground", "based"}))
}
