package analytics

import (
	"sort"
	"strings"
	"unicode/utf8"

	"trainpulse/pkg/contracts/domain"
)

// stopWords holds common Spanish function words plus domain filler terms
// that would otherwise dominate the frequency table.
var stopWords = buildStopWords(
	"de", "la", "que", "el", "en", "y", "a", "los", "del", "se", "las", "por", "un",
	"para", "con", "no", "una", "su", "al", "lo", "como", "más", "pero", "sus", "le",
	"ya", "o", "este", "sí", "porque", "esta", "entre", "cuando", "muy", "sin",
	"sobre", "también", "me", "hasta", "hay", "donde", "quien", "desde", "todo",
	"nos", "durante", "todos", "uno", "les", "ni", "contra", "otros", "ese", "eso",
	"ante", "ellos", "e", "esto", "mí", "antes", "algunos", "qué", "unos", "yo",
	"otro", "otras", "otra", "él", "tanto", "esa", "estos", "mucho", "quienes",
	"nada", "muchos", "cual", "poco", "ella", "estar", "estas", "algunas", "algo",
	"nosotros", "mi", "mis", "tú", "te", "ti", "tu", "tus", "ellas", "nosotras",
	"vosotros", "vosotras", "os", "mío", "mía", "míos", "mías", "tuyo", "tuya",
	"tuyos", "tuyas", "suyo", "suya", "suyos", "suyas", "nuestro", "nuestra",
	"nuestros", "nuestras", "vuestro", "vuestra", "vuestros", "vuestras", "es",
	"son", "fue", "era", "está", "están", "ser", "hacer", "tener", "curso",
	"capacitación", "taller", "sesión", "bueno", "malo", "regular", "excelente",
	"bien", "gracias", "hola", "día", "días",
	"atención", "interés", "deseo", "acción", "aida",
)

func buildStopWords(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// punctuation is replaced with spaces before tokenizing.
const punctuation = ".,/#!$%^&*;:{}=-_`~()"

// wordCounter builds a word-frequency table over free-text answers. Tokens
// of length two or less and stop words are discarded; insertion order is
// kept so equal counts rank first-observed first.
type wordCounter struct {
	order  []string
	counts map[string]int
}

func newWordCounter() *wordCounter {
	return &wordCounter{counts: make(map[string]int)}
}

// Add tokenizes one answer and counts its surviving tokens.
func (wc *wordCounter) Add(text string) {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return ' '
		}
		return r
	}, strings.ToLower(text))

	for _, token := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if _, seen := wc.counts[token]; !seen {
			wc.order = append(wc.order, token)
		}
		wc.counts[token]++
	}
}

// Top returns the n most frequent words, sorted descending by count with
// ties broken by first observation.
func (wc *wordCounter) Top(n int) []domain.WordCount {
	words := make([]domain.WordCount, 0, len(wc.order))
	for _, token := range wc.order {
		words = append(words, domain.WordCount{Text: token, Value: wc.counts[token]})
	}
	sort.SliceStable(words, func(i, j int) bool { return words[i].Value > words[j].Value })
	if len(words) > n {
		words = words[:n]
	}
	return words
}
