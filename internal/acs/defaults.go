package acs

import (
	"fmt"

	"github.com/sells-group/census-tidy/internal/reshape"
)

// Source names.
const (
	SourceEducation         = "education"
	SourceIncome            = "income"
	SourcePopulationProfile = "population_profile"
)

// Section headers of the S1501 educational attainment table.
const (
	SectionAgeByEducation = "AGE BY EDUCATIONAL ATTAINMENT"
	SectionRace           = "RACE AND HISPANIC OR LATINO ORIGIN BY EDUCATIONAL ATTAINMENT"
	SectionPoverty        = "POVERTY RATE FOR THE POPULATION 25 YEARS AND OVER FOR WHOM POVERTY STATUS IS DETERMINED BY EDUCATIONAL ATTAINMENT LEVEL"
	SectionPercentAlloc   = "PERCENT ALLOCATED"
)

// EarningsGroupHeader opens the earnings block inside the earnings section.
const EarningsGroupHeader = "Population 25 years and over with earnings"

// Earnings section titles carry the dollar year, so the catalog lists one
// variant per year in this range.
const (
	firstDollarYear = 2005
	lastDollarYear  = 2035
)

// EarningsSection returns the earnings section title for a dollar year.
func EarningsSection(year int) string {
	return fmt.Sprintf("MEDIAN EARNINGS IN THE PAST 12 MONTHS (IN %d INFLATION-ADJUSTED DOLLARS)", year)
}

func earningsSections() []string {
	out := make([]string, 0, lastDollarYear-firstDollarYear+1)
	for y := firstDollarYear; y <= lastDollarYear; y++ {
		out = append(out, EarningsSection(y))
	}
	return out
}

// DefaultVocabulary maps S1501 column categories to output fields.
func DefaultVocabulary() reshape.Vocabulary {
	return reshape.NewVocabulary(map[string]string{
		"total":          "total_estimate",
		"percent":        "total_percent",
		"male":           "male_estimate",
		"percent male":   "male_percent",
		"female":         "female_estimate",
		"percent female": "female_percent",
	})
}

// AgeHeaders maps the S1501 age bracket headers to their canonical names.
var AgeHeaders = map[string]string{
	"Population 18 to 24 years":    "18 to 24 years",
	"Population 25 years and over": "25 years and over",
	"Population 25 to 34 years":    "25 to 34 years",
	"Population 35 to 44 years":    "35 to 44 years",
	"Population 45 to 64 years":    "45 to 64 years",
	"Population 65 years and over": "65 years and over",
}

// EarningsEducationLevels is the allow-list of the earnings block.
var EarningsEducationLevels = []string{
	"Less than high school graduate",
	"High school graduate (includes equivalency)",
	"Some college or associate's degree",
	"Bachelor's degree",
	"Graduate or professional degree",
}

// AgeGroups lists the age dimension, in display order.
var AgeGroups = []string{
	"Under 5 years",
	"5 to 17 years",
	"18 to 24 years",
	"25 years and over",
	"25 to 34 years",
	"35 to 44 years",
	"45 to 64 years",
	"45 to 54 years",
	"55 to 64 years",
	"65 to 74 years",
	"65 years and over",
	"75 years and over",
}

// IncomeIndicators are the S1901 rows of the income distribution.
var IncomeIndicators = []string{
	"Total",
	"Less than $10,000",
	"$10,000 to $14,999",
	"$15,000 to $24,999",
	"$25,000 to $34,999",
	"$35,000 to $49,999",
	"$50,000 to $74,999",
	"$75,000 to $99,999",
	"$100,000 to $149,999",
	"$150,000 to $199,999",
	"$200,000 or more",
	"Median income (dollars)",
	"Mean income (dollars)",
}

// AllocationIndicators are the S1901 rows under PERCENT ALLOCATED.
var AllocationIndicators = []string{
	"Household income in the past 12 months",
	"Family income in the past 12 months",
	"Nonfamily income in the past 12 months",
}

// PopulationAgeBrackets are the population profile age rows.
var PopulationAgeBrackets = []string{
	"Under 5 years",
	"5 to 17 years",
	"18 to 24 years",
	"25 to 34 years",
	"35 to 44 years",
	"45 to 54 years",
	"55 to 64 years",
	"65 to 74 years",
	"75 years and over",
}

func text(name string) reshape.Column { return reshape.Column{Name: name, Kind: reshape.KindText} }
func yearCol() reshape.Column { return reshape.Column{Name: "year", Kind: reshape.KindYear} }
func count(name string) reshape.Column { return reshape.Column{Name: name, Kind: reshape.KindCount} }
func pct(name string) reshape.Column { return reshape.Column{Name: name, Kind: reshape.KindPercent} }
func amt(name string) reshape.Column { return reshape.Column{Name: name, Kind: reshape.KindAmount} }

func educationSections() []string {
	return append([]string{SectionAgeByEducation, SectionRace, SectionPoverty}, earningsSections()...)
}

// DefaultCatalog returns the built-in sources and facts.
func DefaultCatalog() *Catalog {
	educationRoles := reshape.Roles{Dimension: "state", Partition: "year", Entity: "education", Context: "age_group"}
	educationKey := []string{"state", "year", "education", "age_group"}

	// The age fact reads the whole extract. Later sections repeat education
	// rows under the last age bracket, so only the first of each is kept.
	ageByEducation := reshape.FactSpec{
		Name:   "age_by_education",
		Source: SourceEducation,
		Schema: reshape.Schema{
			Name: "age_by_education",
			Columns: []reshape.Column{
				text("state"), yearCol(), text("education"), text("age_group"),
				count("total_estimate"), pct("total_percent"),
				count("male_estimate"), pct("male_percent"),
				count("female_estimate"), pct("female_percent"),
			},
			Key:       educationKey,
			Partition: "year",
		},
		Roles:          educationRoles,
		Vocabulary:     DefaultVocabulary(),
		SectionHeaders: educationSections(),
		GroupHeaders:   AgeHeaders,
		Dedupe:         true,
	}

	earningByEducation := reshape.FactSpec{
		Name:   "earning_by_education",
		Source: SourceEducation,
		Schema: reshape.Schema{
			Name: "earning_by_education",
			Columns: []reshape.Column{
				text("state"), yearCol(), text("education"), text("age_group"),
				count("total_estimate"), count("male_estimate"), count("female_estimate"),
			},
			Key:       educationKey,
			Partition: "year",
		},
		Roles: educationRoles,
		Vocabulary: reshape.NewVocabulary(map[string]string{
			"total":  "total_estimate",
			"male":   "male_estimate",
			"female": "female_estimate",
		}),
		SectionHeaders: educationSections(),
		GroupHeaders:   map[string]string{EarningsGroupHeader: "25 years and over"},
		Scope:          earningsSections(),
		Entities:       EarningsEducationLevels,
		RequireContext: true,
	}

	incomeRoles := reshape.Roles{Dimension: "state", Partition: "year", Entity: "indicator"}
	incomeKey := []string{"state", "year", "indicator"}

	incomeDistribution := reshape.FactSpec{
		Name:   "income_distribution",
		Source: SourceIncome,
		Schema: reshape.Schema{
			Name: "income_distribution",
			Columns: []reshape.Column{
				text("state"), yearCol(), text("indicator"),
				amt("households_estimate"), amt("families_estimate"),
				amt("married_couple_families_estimate"), amt("nonfamily_households_estimate"),
			},
			Key:       incomeKey,
			Partition: "year",
		},
		Roles: incomeRoles,
		Vocabulary: reshape.NewVocabulary(map[string]string{
			"households":              "households_estimate",
			"families":                "families_estimate",
			"married-couple families": "married_couple_families_estimate",
			"nonfamily households":    "nonfamily_households_estimate",
		}),
		SectionHeaders: []string{SectionPercentAlloc},
		Entities:       IncomeIndicators,
		Dedupe:         true,
	}

	incomeAllocated := reshape.FactSpec{
		Name:   "income_percent_allocated",
		Source: SourceIncome,
		Schema: reshape.Schema{
			Name: "income_percent_allocated",
			Columns: []reshape.Column{
				text("state"), yearCol(), text("indicator"),
				pct("households_estimate"), pct("families_estimate"),
				pct("married_couple_families_estimate"), pct("nonfamily_households_estimate"),
			},
			Key:       incomeKey,
			Partition: "year",
		},
		Roles:          incomeRoles,
		Vocabulary:     incomeDistribution.Vocabulary,
		SectionHeaders: []string{SectionPercentAlloc},
		Scope:          []string{SectionPercentAlloc},
		Entities:       AllocationIndicators,
	}

	populationByAge := reshape.FactSpec{
		Name:   "population_by_age",
		Source: SourcePopulationProfile,
		Schema: reshape.Schema{
			Name:      "population_by_age",
			Columns:   []reshape.Column{text("state"), yearCol(), text("age_group"), pct("population_percent")},
			Key:       []string{"state", "year", "age_group"},
			Partition: "year",
		},
		Roles:      reshape.Roles{Dimension: "state", Partition: "year", Entity: "age_group"},
		Vocabulary: reshape.NewVocabulary(map[string]string{"total population": "population_percent"}),
		Entities:   PopulationAgeBrackets,
		Dedupe:     true,
	}

	return &Catalog{
		Sources: []Source{
			{Name: SourceEducation, Pattern: "education_*"},
			{Name: SourceIncome, Pattern: "total_income_*"},
			{Name: SourcePopulationProfile, Pattern: "Population_profile_*"},
		},
		Facts: []reshape.FactSpec{
			ageByEducation,
			earningByEducation,
			incomeDistribution,
			incomeAllocated,
			populationByAge,
		},
	}
}
