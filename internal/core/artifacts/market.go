package artifacts

import (
	"encoding/json"
	"strings"
)

// NoMarketData is the answer for queries with no canned data.
const NoMarketData = "No specific market data found for this role."

// MarketData is the simulated market snapshot for one role.
type MarketData struct {
	Role           string   `json:"-"`
	AvgSalary      string   `json:"avg_salary"`
	Demand         string   `json:"demand"`
	SkillsInDemand []string `json:"skills_in_demand"`
}

// SearchJobMarket returns canned market data for engineer and AI queries.
// Engineer queries win when both match.
func SearchJobMarket(query string) (MarketData, bool) {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "engineer"):
		return MarketData{
			Role:           RoleFoundingEngineer,
			AvgSalary:      "$120,000-$150,000",
			Demand:         "High",
			SkillsInDemand: []string{"Full-stack development", "System architecture", "DevOps", "Leadership"},
		}, true
	case strings.Contains(q, "genai") || strings.Contains(q, "ai"):
		return MarketData{
			Role:           RoleGenAIIntern,
			AvgSalary:      "$30-40/hour",
			Demand:         "Very High",
			SkillsInDemand: []string{"Python", "LangChain/LangGraph", "NLP", "Prompt Engineering"},
		}, true
	default:
		return MarketData{}, false
	}
}

// MarketReport renders the search result as the tool text: a JSON object
// keyed by role, or NoMarketData.
func MarketReport(query string) string {
	data, ok := SearchJobMarket(query)
	if !ok {
		return NoMarketData
	}
	out, err := json.MarshalIndent(map[string]MarketData{data.Role: data}, "", "  ")
	if err != nil {
		return NoMarketData
	}
	return string(out)
}
