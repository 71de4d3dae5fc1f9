package wizard

import "strings"

var counties = []string{
	"Nairobi", "Mombasa", "Kwale", "Kilifi", "Tana River", "Lamu", "Taita-Taveta", "Garissa",
	"Wajir", "Mandera", "Marsabit", "Isiolo", "Meru", "Tharaka-Nithi", "Embu", "Kitui",
	"Machakos", "Makueni", "Nyandarua", "Nyeri", "Kirinyaga", "Murang'a", "Kiambu", "Turkana",
	"West Pokot", "Samburu", "Trans-Nzoia", "Uasin Gishu", "Elgeyo-Marakwet", "Nandi",
	"Baringo", "Laikipia", "Nakuru", "Narok", "Kajiado", "Kericho", "Bomet", "Kakamega",
	"Vihiga", "Bungoma", "Busia", "Siaya", "Kisumu", "Homa Bay", "Migori", "Kisii", "Nyamira",
}

// Only these counties have a sub-county catalogue; elsewhere the
// sub-county is free text.
var subCounties = map[string][]string{
	"Nairobi": {
		"Westlands", "Dagoretti North", "Dagoretti South", "Langata", "Kibra", "Roysambu",
		"Kasarani", "Ruaraka", "Embakasi South", "Embakasi North", "Embakasi Central",
		"Embakasi East", "Embakasi West", "Makadara", "Kamukunji", "Starehe", "Mathare",
	},
	"Mombasa": {"Changamwe", "Jomba", "Kisauni", "Nyali", "Likoni", "Mvita"},
	"Kiambu": {
		"Gatundu South", "Gatundu North", "Juja", "Thika Town", "Ruiru", "Githunguri",
		"Kiambu Town", "Kiambaa", "Kabete", "Kikuyu", "Limuru", "Lari",
	},
}

// Counties lists the 47 counties of Kenya.
func Counties() []string {
	out := make([]string, len(counties))
	copy(out, counties)
	return out
}

// SubCounties returns the known sub-counties of county, matched without
// regard to case. ok is false for an unknown county.
func SubCounties(county string) (list []string, ok bool) {
	for _, c := range counties {
		if strings.EqualFold(c, strings.TrimSpace(county)) {
			known := subCounties[c]
			out := make([]string, len(known))
			copy(out, known)
			return out, true
		}
	}
	return nil, false
}
