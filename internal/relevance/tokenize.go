package relevance

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a an and are as at be been but by for from has have he her his i in into is it its
		me my no nor not of on or our s she so than that the their them then there these they
		this those to up us was we were what when where which who whom why will with you your
		about after all also any can could did do does during each how if just more most new
		news now only other over said says such t very via vs would latest today update updates`) {
		stopwords[w] = struct{}{}
	}
}

// tokenize folds accents and case, splits on anything that is not a letter
// or digit, drops stopwords and reduces plural forms.
func tokenize(text string) []string {
	folded, _, err := transform.String(foldChain(), text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, stem(f))
	}
	return tokens
}

// terms returns the distinct tokens of text in first-seen order.
func terms(text string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, tok := range tokenize(text) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func tokenSet(texts ...string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, text := range texts {
		for _, tok := range tokenize(text) {
			set[tok] = struct{}{}
		}
	}
	return set
}

func foldChain() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func stem(tok string) string {
	switch {
	case len(tok) > 4 && strings.HasSuffix(tok, "ies"):
		return tok[:len(tok)-3] + "y"
	case len(tok) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") && !strings.HasSuffix(tok, "us"):
		return tok[:len(tok)-1]
	}
	return tok
}
