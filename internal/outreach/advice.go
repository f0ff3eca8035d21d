package outreach

import "strings"

// slotNames maps time slots to the display names the planning UI shows.
var slotNames = map[TimeSlot]string{
	SlotMorning:   "mañana (8-12h)",
	SlotAfternoon: "mediodía (12-16h)",
	SlotEvening:   "tarde (16-20h)",
	SlotNight:     "noche (20-8h)",
}

// SlotName returns the display name for a time slot.
func SlotName(slot TimeSlot) string {
	if name, ok := slotNames[slot]; ok {
		return name
	}
	return string(slot)
}

// slotFor buckets a local hour into one of the four send windows.
// Night wraps around midnight.
func slotFor(hour int) TimeSlot {
	switch {
	case hour >= 8 && hour < 12:
		return SlotMorning
	case hour >= 12 && hour < 16:
		return SlotAfternoon
	case hour >= 16 && hour < 20:
		return SlotEvening
	default:
		return SlotNight
	}
}

// subjectLineGuidance is the static subject-line dimension. It does not
// depend on sample size.
func subjectLineGuidance() SubjectLineRecommendation {
	return SubjectLineRecommendation{
		RecommendedPatterns: []string{
			"Boda el {fecha} – consulta de {servicio}",
			"Solicitud de presupuesto de {servicio} para boda el {fecha}",
			"{servicio} para nuestra boda en {lugar}",
		},
		AvoidPatterns: []string{
			"Consulta",
			"Información",
			"Hola",
		},
		OptimalLength: LengthRange{Min: 30, Max: 60},
		IncludeElements: []string{
			"fecha del evento",
			"tipo de servicio",
			"mención identificativa (nombres de la pareja o lugar)",
		},
	}
}

// categoryAdvice holds curated guidance per supplier vertical. Unknown
// categories fall back to genericAdvice.
var categoryAdvice = map[string][]string{
	"fotografía": {
		"Pregunta por la disponibilidad de la fecha antes de pedir el portfolio completo",
		"Menciona el estilo de reportaje que buscáis (natural, editorial, documental)",
		"Indica si necesitáis también vídeo; muchos estudios lo ofrecen en pack",
	},
	"catering": {
		"Indica el número aproximado de invitados desde el primer mensaje",
		"Menciona restricciones alimentarias o menús especiales cuanto antes",
		"Pregunta si el precio incluye personal de sala y montaje",
	},
	"música": {
		"Especifica los momentos a cubrir (ceremonia, cóctel, banquete, fiesta)",
		"Pregunta por el equipo de sonido incluido y las necesidades técnicas del lugar",
		"Menciona el estilo musical que encaja con vuestra celebración",
	},
	"flores": {
		"Indica la paleta de colores y el estilo de la decoración",
		"Pregunta por flores de temporada para ajustar el presupuesto",
		"Menciona los espacios a decorar (ceremonia, mesas, ramo)",
	},
}

var genericAdvice = []string{
	"Incluye la fecha y el lugar de la boda en el primer mensaje",
	"Describe brevemente lo que buscáis para recibir un presupuesto ajustado",
	"Pregunta por la disponibilidad antes de entrar en detalles",
}

// adviceFor returns the curated list for a category, or the generic fallback.
func adviceFor(category string) []string {
	if advice, ok := categoryAdvice[strings.ToLower(category)]; ok {
		return advice
	}
	return genericAdvice
}

// Query signal token lists. The scan is a lower-case substring check; the
// lists cover the markers couples actually type in supplier searches.
var (
	locationTokens = []string{
		"madrid", "barcelona", "valencia", "sevilla", "bilbao", "málaga",
		"zaragoza", "granada", "mallorca", "finca", "hacienda", "masía",
		"lugar", "zona",
	}
	dateTokens = []string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
		"agosto", "septiembre", "octubre", "noviembre", "diciembre",
		"fecha", "2025", "2026", "2027",
	}
	budgetTokens = []string{
		"presupuesto", "euro", "euros", "€", "precio", "coste", "económico",
	}
	sizeTokens = []string{
		"invitados", "personas", "comensales", "pax",
	}
)

func containsAny(query string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(query, tok) {
			return true
		}
	}
	return false
}

// analyzeQuery scans a search query for the four planning signals and
// suggests mentioning whichever are missing.
func analyzeQuery(searchQuery string) *QueryAdvice {
	query := strings.ToLower(searchQuery)

	ctx := SearchContext{
		IncludesLocation: containsAny(query, locationTokens),
		IncludesDate:     containsAny(query, dateTokens),
		IncludesBudget:   containsAny(query, budgetTokens),
		IncludesSize:     containsAny(query, sizeTokens),
	}

	recommendations := []string{}
	if !ctx.IncludesLocation {
		recommendations = append(recommendations, "Menciona la ubicación del evento para recibir respuestas de proveedores de tu zona")
	}
	if !ctx.IncludesDate {
		recommendations = append(recommendations, "Incluye la fecha de la boda; los proveedores priorizan consultas con fecha concreta")
	}
	if !ctx.IncludesBudget {
		recommendations = append(recommendations, "Indica un rango de presupuesto para recibir propuestas ajustadas")
	}
	if !ctx.IncludesSize {
		recommendations = append(recommendations, "Menciona el número de invitados; condiciona la disponibilidad y el precio")
	}

	return &QueryAdvice{SearchContext: ctx, Recommendations: recommendations}
}
