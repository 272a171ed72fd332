package knowledge

// SeedTopics returns the built-in topics shipped with the service.
func SeedTopics() []Topic {
	return []Topic{
		{
			Name: "climate change",
			Sources: []Source{
				{Title: "IPCC Climate Report 2023", Credibility: 0.95, Supports: true, Excerpt: "Global temperatures have risen 1.1°C since pre-industrial times"},
				{Title: "NASA Climate Data", Credibility: 0.93, Supports: true, Excerpt: "2023 was the warmest year on record globally"},
				{Title: "Nature Climate Science", Credibility: 0.91, Supports: true, Excerpt: "Human activities are primary driver of recent climate change"},
			},
		},
		{
			Name: "vaccine",
			Sources: []Source{
				{Title: "WHO Vaccine Safety Report", Credibility: 0.94, Supports: true, Excerpt: "COVID-19 vaccines have excellent safety profile with rare serious adverse events"},
				{Title: "CDC Vaccine Monitoring", Credibility: 0.92, Supports: true, Excerpt: "VAERS data shows vaccines are safe and effective"},
				{Title: "Lancet Vaccine Study", Credibility: 0.90, Supports: true, Excerpt: "mRNA vaccines show 95% efficacy in clinical trials"},
			},
		},
		{
			Name: "election",
			Sources: []Source{
				{Title: "Official Election Results", Credibility: 0.96, Supports: true, Excerpt: "No evidence of widespread fraud in 2020 election"},
				{Title: "Court Records Database", Credibility: 0.94, Supports: true, Excerpt: "60+ lawsuits challenging election results were dismissed"},
				{Title: "Election Security Report", Credibility: 0.91, Supports: true, Excerpt: "2020 election was most secure in American history"},
			},
		},
	}
}

// Seed returns a knowledge base holding the built-in topics.
func Seed() *Base {
	b, err := New(SeedTopics())
	if err != nil {
		panic(err)
	}
	return b
}
