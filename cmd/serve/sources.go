package serve

import "github.com/kantor-lab/kantorfx/server/config"

// defaultSources returns the built-in Lublin bureau source list,
// used when the configuration does not specify any
func defaultSources() []config.Source {
	return []config.Source{
		{Name: "Kantor Grand Olimp", URL: "https://zlata.ws/pl/kantory/lublin/kantorgrandolimp/"},
		{Name: "Kantor Korab", URL: "https://zlata.ws/pl/kantory/lublin/kantorkorab/"},
		{Name: "1913 Kantor", URL: "https://zlata.ws/pl/kantory/lublin/1913/"},
		{Name: "Kantor Tuus", URL: "https://zlata.ws/pl/kantory/lublin/kantortuus/"},
		{Name: "Kantor Anna Janek", URL: "https://zlata.ws/pl/kantory/lublin/kantorannajanek/"},
		{Name: "Kantor Paciorkowski", URL: "https://zlata.ws/pl/kantory/lublin/paciorkowski/"},
		{Name: "Kantor Witosa", URL: "https://zlata.ws/pl/kantory/lublin/kantorzamkowy2/"},
		{Name: "Kantor Probostwo", URL: "https://zlata.ws/pl/kantory/lublin/kantorzamkowy1/"},
		{Name: "Kantor Tarasy", URL: "https://zlata.ws/pl/kantory/lublin/kantortarasylublin/"},
		{Name: "Kantor Grazyna", URL: "https://zlata.ws/pl/kantory/lublin/kantorygrazynalublin/"},
		{Name: "Kantor Plaza", URL: "https://zlata.ws/pl/kantory/lublin/kantorplazalublin/"},
	}
}
