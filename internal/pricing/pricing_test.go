package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice("Gucci 45.5$ S M")
	require.NoError(t, err)
	assert.Equal(t, 45.5, p.Amount)
	assert.Equal(t, "$", p.Currency)

	p, err = ParsePrice("Prada 120€")
	require.NoError(t, err)
	assert.Equal(t, 120.0, p.Amount)
	assert.Equal(t, "€", p.Currency)

	p, err = ParsePrice("Maje 99,9£")
	require.NoError(t, err)
	assert.Equal(t, 99.9, p.Amount)

	_, err = ParsePrice("Gucci bag, gorgeous")
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestParsePercent(t *testing.T) {
	percent, ok := ParsePercent("Gucci 100$ +20%")
	require.True(t, ok)
	assert.Equal(t, 20, percent)

	percent, ok = ParsePercent("Gucci 100$ -5%")
	require.True(t, ok)
	assert.Equal(t, -5, percent)

	_, ok = ParsePercent("Gucci 100$")
	assert.False(t, ok)

	// A bare number with a percent sign but no sign prefix is not a
	// percentage annotation.
	_, ok = ParsePercent("Gucci 100$ 20%")
	assert.False(t, ok)
}

func TestAdjust(t *testing.T) {
	adjusted, effective := Adjust(100, 20)
	assert.Equal(t, 120.0, adjusted)
	assert.Equal(t, 20, effective)

	// Negative requests are partially absorbed.
	adjusted, effective = Adjust(100, -5)
	assert.Equal(t, 105.0, adjusted)
	assert.Equal(t, 5, effective)

	adjusted, effective = Adjust(100, -30)
	assert.Equal(t, 80.0, adjusted)
	assert.Equal(t, -20, effective)

	adjusted, effective = Adjust(45.5, 10)
	assert.Equal(t, 50.0, adjusted)
	assert.Equal(t, 10, effective)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+5%", FormatPercent(5))
	assert.Equal(t, "-20%", FormatPercent(-20))
	assert.Equal(t, "+0%", FormatPercent(0))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "120", FormatPrice(120))
	assert.Equal(t, "45.5", FormatPrice(45.5))
}

func TestRewriteCaptionReplacesTokensInPlace(t *testing.T) {
	out := RewriteCaption("Gucci 100$ +20% S M", 120, "+20%")
	assert.Equal(t, "Gucci 120$ +20% S M", out)

	// Manual annotations around the tokens survive.
	out = RewriteCaption("Gucci beautiful bag 100$ -5% hurry", 105, "+5%")
	assert.Equal(t, "Gucci beautiful bag 105$ +5% hurry", out)
}

func TestRewriteCaptionKeepsCurrency(t *testing.T) {
	out := RewriteCaption("Prada 100€ +10%", 110, "+10%")
	assert.Equal(t, "Prada 110€ +10%", out)
}

func TestRewriteCaptionInsertsAnnotationAfterPrice(t *testing.T) {
	out := RewriteCaption("Gucci 100$ S", 110, "+10%")
	assert.Equal(t, "Gucci 110$ +10% S", out)
}

func TestRewriteCaptionRemovesPercentWhenAnnotationEmpty(t *testing.T) {
	out := RewriteCaption("Gucci 100$ +20% S", 100, "")
	assert.Equal(t, "Gucci 100$ S", out)
}

func TestExtractSizes(t *testing.T) {
	assert.Equal(t, "S M XL", ExtractSizes("Gucci 100$ S M XL"))
	assert.Equal(t, "XS XXXL", ExtractSizes("Prada 50€ xs xxxl"))
	assert.Equal(t, "", ExtractSizes("Gucci 100$"))
}

func TestExtractSizesSkipsPriceAndPercentDigits(t *testing.T) {
	// Neither 100 nor 20 may be read as a size.
	assert.Equal(t, "36 37,5", ExtractSizes("Gucci 100$ +20% 36 37,5"))
}
