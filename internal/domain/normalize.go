package domain

// normalize.go — extracción de proyecto y MatchKey desde títulos libres.
//
// Ambas extracciones son tablas de reglas evaluadas en orden: gana la primera
// que matchea. Para añadir una frase nueva basta con insertar una regla en la
// posición correcta; no hay heurísticas de puntuación.
//
// Limitación conocida: si una pregunta contiene varias cifras en dólares
// (umbral + volumen, por ejemplo) se usa la primera en orden de lectura.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	unknownProject  = "Unknown"
	fallbackNameLen = 30
)

// nameRules son los patrones de nombre de proyecto, en orden de prioridad.
// Las frases ancladas más específicas van primero para que los patrones
// genéricos ("X public sale", "X airdrop") no se queden con el prefijo entero.
var nameRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Over\s+\$[\d.]+[BMK]?\s+committed\s+to\s+the\s+(.+?)\s+public`),
	regexp.MustCompile(`(?i)^What\s+day\s+will\s+the\s+(.+?)\s+airdrop`),
	regexp.MustCompile(`(?i)^Will\s+(.+?)\s+launch`),
	regexp.MustCompile(`(?i)^Will\s+(.+?)\s+perform`),
	regexp.MustCompile(`(?i)^Will\s+(.+?)\s+IPO`),
	regexp.MustCompile(`(?i)^Will\s+(.+?)\s+(?:token|TGE|have)`),
	regexp.MustCompile(`(?i)^(.+?)\s+market\s+cap`),
	regexp.MustCompile(`(?i)^(.+?)\s+FDV\s+above`),
	regexp.MustCompile(`(?i)^(.+?)\s+airdrop`),
	regexp.MustCompile(`(?i)^(.+?)\s+IPO\s+closing`),
	regexp.MustCompile(`(?i)^(.+?)\s+public\s+sale`),
	regexp.MustCompile(`(?i)^(.+?)\s+(?:token|TGE|launch|FDV|market|above|below)`),
	regexp.MustCompile(`(?i)^(.+?)\s+(?:trading|airdrop)`),
}

var (
	suffixCleanup = regexp.MustCompile(`(?i)\s+(?:Protocol|Network|Labs|Finance)$`)
	fallbackSplit = regexp.MustCompile(`(?i)\s+(?:market|FDV|launch|airdrop|IPO|token|above)`)
	emojiPrefix   = regexp.MustCompile(`^[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}\x{FE0F}\x{200D}\s]+`)

	thresholdPattern = regexp.MustCompile(`(?i)\$?([\d.]+)\s*([BMK])`)
	datePattern      = regexp.MustCompile(`(?i)\bby\s+([a-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?`)
)

var unitScale = map[string]float64{
	"B": 1e9,
	"M": 1e6,
	"K": 1e3,
}

var monthNumbers = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// keyRule es una entrada de la cascada de extracción de MatchKey.
type keyRule struct {
	kind    KeyKind
	extract func(n *Normalizer, question string) *MatchKey
}

// keyRules: el umbral tiene prioridad; la fecha solo se usa si no hay umbral.
var keyRules = []keyRule{
	{kind: KeyThreshold, extract: func(_ *Normalizer, q string) *MatchKey { return extractThreshold(q) }},
	{kind: KeyDate, extract: (*Normalizer).extractDate},
}

// Normalizer extrae nombre de proyecto y MatchKey de títulos de mercado.
// El reloj se inyecta porque las fechas sin año usan el año en curso.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer crea un Normalizer. Si now es nil usa time.Now.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize devuelve el proyecto derivado de rawTitle y la clave de question.
func (n *Normalizer) Normalize(rawTitle, question string, platform Platform) (string, *MatchKey) {
	return n.ProjectName(rawTitle, platform), n.ExtractKey(question)
}

// ProjectName extrae el nombre canónico del proyecto desde un título.
func (n *Normalizer) ProjectName(title string, platform Platform) string {
	if platform == PlatformLimitless {
		title = emojiPrefix.ReplaceAllString(title, "")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return unknownProject
	}

	for _, rule := range nameRules {
		if m := rule.FindStringSubmatch(title); m != nil {
			name := strings.TrimSpace(m[1])
			return strings.TrimSpace(suffixCleanup.ReplaceAllString(name, ""))
		}
	}

	if loc := fallbackSplit.FindStringIndex(title); loc != nil {
		if prefix := strings.TrimSpace(title[:loc[0]]); prefix != "" {
			return prefix
		}
	}
	return truncateRunes(title, fallbackNameLen)
}

// ExtractKey recorre keyRules y devuelve la primera clave encontrada, o nil.
func (n *Normalizer) ExtractKey(question string) *MatchKey {
	for _, rule := range keyRules {
		if key := rule.extract(n, question); key != nil {
			return key
		}
	}
	return nil
}

// CanonicalizeThreshold convierte una etiqueta compacta ("$500M", "0.5b")
// a dólares absolutos. "$500M" y "$0.5B" producen exactamente 500000000.
func CanonicalizeThreshold(label string) (float64, bool) {
	key := extractThreshold(label)
	if key == nil {
		return 0, false
	}
	return key.Amount, true
}

// extractThreshold usa el primer importe numérico válido en orden de lectura.
func extractThreshold(question string) *MatchKey {
	for _, m := range thresholdPattern.FindAllStringSubmatch(question, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue // "." suelto u otro token no numérico
		}
		unit := strings.ToUpper(m[2])
		return ThresholdKey(value*unitScale[unit], "$"+m[1]+unit)
	}
	return nil
}

// extractDate busca "by <Mes> <día>[, <año>]". Sin año usa el año del reloj.
func (n *Normalizer) extractDate(question string) *MatchKey {
	m := datePattern.FindStringSubmatch(question)
	if m == nil {
		return nil
	}
	month, ok := monthNumbers[strings.ToLower(m[1])]
	if !ok {
		return nil
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	year := n.now().Year()
	if m[3] != "" {
		if year, err = strconv.Atoi(m[3]); err != nil {
			return nil
		}
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return nil // 31 de febrero y similares
	}
	return DateKey(t.Format("2006-01-02"))
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
