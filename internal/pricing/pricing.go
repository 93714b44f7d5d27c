package pricing

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoPrice is returned when a caption carries no price token. A
// submission without a price cannot be published.
var ErrNoPrice = errors.New("no price token found")

// markupOffset is added to negative percentage requests before applying
// them. Negative requests are partially absorbed, never passed through
// unmodified.
const markupOffset = 10

var (
	priceRe   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*([$€£])`)
	percentRe = regexp.MustCompile(`[-+]\d+%`)
	sizeRe    = regexp.MustCompile(`(?i)\b(?:XXXL|XXL|XL|XS|S|M|L|\d+(?:[.,]\d+)?)\b`)
)

// Price is a parsed price token.
type Price struct {
	Amount   float64
	Currency string
}

// ParsePrice extracts the first <number><currency> token from a caption.
func ParsePrice(caption string) (Price, error) {
	m := priceRe.FindStringSubmatch(caption)
	if m == nil {
		return Price{}, ErrNoPrice
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return Price{}, ErrNoPrice
	}
	return Price{Amount: amount, Currency: m[2]}, nil
}

// ParsePercent extracts the first signed integer percentage token. The
// second return is false when the caption carries none.
func ParsePercent(caption string) (int, bool) {
	m := percentRe.FindString(caption)
	if m == "" {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(m, "+"), "%"))
	if err != nil {
		return 0, false
	}
	return value, true
}

// Adjust computes the adjusted price for a requested percentage. Negative
// requests get the markup offset added first; the effective percentage
// actually applied is returned alongside the price.
func Adjust(price float64, percent int) (float64, int) {
	effective := percent
	if percent < 0 {
		effective = percent + markupOffset
	}
	adjusted := math.Round(price * (1 + float64(effective)/100))
	return adjusted, effective
}

// FormatPercent renders an effective percentage as a caption annotation.
func FormatPercent(effective int) string {
	return fmt.Sprintf("%+d%%", effective)
}

// FormatPrice renders a price without a trailing fractional zero.
func FormatPrice(amount float64) string {
	if amount == math.Trunc(amount) {
		return strconv.FormatInt(int64(amount), 10)
	}
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// RewriteCaption replaces the price token and the percentage token of a
// caption in place, preserving all other text so manual annotations
// survive corrections. An empty annotation removes the percentage token;
// a caption without one gains the annotation right after the price.
func RewriteCaption(caption string, price float64, annotation string) string {
	out := caption
	priceEnd := -1
	if loc := priceRe.FindStringSubmatchIndex(out); loc != nil {
		currency := out[loc[4]:loc[5]]
		token := FormatPrice(price) + currency
		out = out[:loc[0]] + token + out[loc[1]:]
		priceEnd = loc[0] + len(token)
	}
	if loc := percentRe.FindStringIndex(out); loc != nil {
		if annotation != "" {
			out = out[:loc[0]] + annotation + out[loc[1]:]
		} else {
			out = out[:loc[0]] + out[loc[1]:]
		}
	} else if annotation != "" && priceEnd >= 0 {
		out = out[:priceEnd] + " " + annotation + out[priceEnd:]
	}
	return strings.Join(strings.Fields(out), " ")
}

// BrandText returns the caption text preceding the first price token, or
// the whole caption when it carries no price. This is the free-text brand
// input fed to the resolver.
func BrandText(caption string) string {
	if loc := priceRe.FindStringIndex(caption); loc != nil {
		return strings.TrimSpace(caption[:loc[0]])
	}
	return strings.TrimSpace(caption)
}

// ExtractSizes collects letter sizes (XS through XXXL) and bare numeric
// sizes from a caption, in order of appearance. Price and percentage
// tokens are removed first so their digits never read as sizes. Returns
// an empty string when the caption carries no sizes.
func ExtractSizes(caption string) string {
	stripped := priceRe.ReplaceAllString(caption, " ")
	stripped = percentRe.ReplaceAllString(stripped, " ")

	matches := sizeRe.FindAllString(stripped, -1)
	if len(matches) == 0 {
		return ""
	}
	sizes := make([]string, len(matches))
	for i, m := range matches {
		if m[0] >= '0' && m[0] <= '9' {
			sizes[i] = m
		} else {
			sizes[i] = strings.ToUpper(m)
		}
	}
	return strings.Join(sizes, " ")
}
