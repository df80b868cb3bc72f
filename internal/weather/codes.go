package weather

// DescriptionUnavailable is used for weather codes missing from the table.
const DescriptionUnavailable = "Beschreibung nicht verfuegbar"

// WMO weather interpretation codes as returned by Open-Meteo.
var weatherCodeDescriptions = map[int]string{
	0:  "Klarer Himmel",
	1:  "Ueberwiegend klar",
	2:  "Teilweise bewoelkt",
	3:  "Bedeckt",
	45: "Nebel",
	48: "Reifnebel",
	51: "Leichter Nieselregen",
	53: "Maessiger Nieselregen",
	55: "Starker Nieselregen",
	56: "Leichter gefrierender Nieselregen",
	57: "Starker gefrierender Nieselregen",
	61: "Leichter Regen",
	63: "Maessiger Regen",
	65: "Starker Regen",
	66: "Leichter gefrierender Regen",
	67: "Starker gefrierender Regen",
	71: "Leichter Schneefall",
	73: "Maessiger Schneefall",
	75: "Starker Schneefall",
	77: "Schneekoerner",
	80: "Leichter Regenschauer",
	81: "Maessiger Regenschauer",
	82: "Heftiger Regenschauer",
	85: "Leichter Schneeschauer",
	86: "Starker Schneeschauer",
	95: "Gewitter",
	96: "Gewitter mit leichtem Hagel",
	99: "Gewitter mit starkem Hagel",
}

// DescribeCode maps a weather code to its description, falling back to
// DescriptionUnavailable for unknown codes.
func DescribeCode(code int) string {
	if desc, ok := weatherCodeDescriptions[code]; ok {
		return desc
	}
	return DescriptionUnavailable
}
