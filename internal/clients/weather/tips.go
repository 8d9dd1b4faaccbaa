package weather

const (
	HotThresholdC  = 30.0
	ColdThresholdC = 5.0
)

type tipKey string

const (
	tipHot          tipKey = "hot"
	tipCold         tipKey = "cold"
	tipClear        tipKey = "clear"
	tipClouds       tipKey = "clouds"
	tipRain         tipKey = "rain"
	tipThunderstorm tipKey = "thunderstorm"
	tipSnow         tipKey = "snow"
	tipAtmosphere   tipKey = "atmosphere"
	tipGeneric      tipKey = "generic"
	tipUnavailable  tipKey = "unavailable"
)

var tips = map[string]map[tipKey]string{
	"es": {
		tipHot:          "Hace mucho calor: bebe agua cada hora y evita el ejercicio intenso al mediodía.",
		tipCold:         "Hace frío: calienta bien antes de entrenar o haz tu rutina en casa.",
		tipClear:        "Día despejado: perfecto para caminar y sumar pasos al aire libre.",
		tipClouds:       "Cielo nublado: buen momento para una caminata sin sol fuerte.",
		tipRain:         "Está lloviendo: prueba una sesión de yoga o meditación bajo techo.",
		tipThunderstorm: "Hay tormenta: quédate en casa y aprovecha para leer un rato.",
		tipSnow:         "Está nevando: abrígate bien y cuida tus pasos si sales.",
		tipAtmosphere:   "Hay poca visibilidad o aire cargado: mejor entrena en interiores hoy.",
		tipGeneric:      "Mantente activo y no olvides hidratarte durante el día.",
		tipUnavailable:  "Consejo del clima no disponible por ahora.",
	},
	"en": {
		tipHot:          "It's very hot: drink water every hour and skip intense exercise at midday.",
		tipCold:         "It's cold: warm up well before training or work out at home.",
		tipClear:        "Clear skies: a perfect day to walk and add steps outdoors.",
		tipClouds:       "Cloudy skies: a good time for a walk without strong sun.",
		tipRain:         "It's raining: try an indoor yoga or meditation session.",
		tipThunderstorm: "There's a storm: stay in and enjoy some reading time.",
		tipSnow:         "It's snowing: dress warmly and watch your step if you go out.",
		tipAtmosphere:   "Low visibility or poor air: better to train indoors today.",
		tipGeneric:      "Stay active and remember to hydrate throughout the day.",
		tipUnavailable:  "Weather tip unavailable right now.",
	},
}

// Tip picks a canned wellness tip for the conditions. Temperature extremes
// win over the condition group. Unknown languages use Spanish.
func Tip(cur *Current, lang string) string {
	if cur == nil {
		return tipText(lang, tipUnavailable)
	}
	return tipText(lang, classify(cur))
}

// UnavailableTip is shown when the weather lookup failed.
func UnavailableTip(lang string) string {
	return tipText(lang, tipUnavailable)
}

func classify(cur *Current) tipKey {
	switch {
	case cur.TemperatureC >= HotThresholdC:
		return tipHot
	case cur.TemperatureC <= ColdThresholdC:
		return tipCold
	}

	switch cur.Condition {
	case "Clear":
		return tipClear
	case "Clouds":
		return tipClouds
	case "Rain", "Drizzle":
		return tipRain
	case "Thunderstorm":
		return tipThunderstorm
	case "Snow":
		return tipSnow
	case "Mist", "Smoke", "Haze", "Dust", "Fog", "Sand", "Ash", "Squall", "Tornado":
		return tipAtmosphere
	default:
		return tipGeneric
	}
}

func tipText(lang string, key tipKey) string {
	byKey, ok := tips[lang]
	if !ok {
		byKey = tips["es"]
	}
	return byKey[key]
}
