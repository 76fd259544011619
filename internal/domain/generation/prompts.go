package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/buildlab/internal/domain/attributes"
	"github.com/okian/buildlab/internal/domain/model"
)

const systemTemplate = `You are an NBA 2K25 build optimization expert. Your task is to create an optimized build configuration based on the user's preferences and 2K Lab data. You'll set ATTRIBUTE CAPS (maximum potential) for each attribute, NOT current values.

The user's preferences have been analyzed as:
%s

Key information about NBA 2K25 builds:
1. Each position has a total attribute point cap (PG: 610, SG: 605, SF: 600, PF: 595, C: 590)
2. Attribute costs increase exponentially at higher ratings
3. Taller players pay more attribute points for certain skills (shooting, ball handling)
4. Specific badge tiers require minimum attribute thresholds
5. Some badges are restricted by height

Create a build with these specifications:
1. Position: %s
2. Height: %s
3. Weight and Wingspan: Optimized for the playstyle
4. Attribute Caps: Set to maximize effectiveness for the playstyle
5. Badge Selection: Identify key badges that match the playstyle

Follow these attribute cap guidelines:
- Prioritize attributes for the key playstyle
- Meet minimum thresholds for important badges
- Distribute attribute points efficiently based on attribute costs
- Set lower caps for non-essential attributes
- Target key attribute breakpoints that unlock specific animations

Return a complete build configuration in JSON format:
%s`

const userTemplate = `User preferences: %s
Recommended height: %s (%d inches)
Total attribute cap: %d points

Badge requirements sample:
%s

Attribute weights sample for this height:
%s

Please create an optimized build configuration that sets ATTRIBUTE CAPS (not current values) based on these preferences and constraints.`

// schema renders the expected answer shape with every canonical key.
func schema() string {
	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString("  \"position\": \"string\",\n")
	b.WriteString("  \"height\": number (in inches),\n")
	b.WriteString("  \"weight\": number,\n")
	b.WriteString("  \"wingspan\": number,\n")
	for _, k := range attributes.Keys() {
		fmt.Fprintf(&b, "  %q: number,\n", k)
	}
	b.WriteString("  \"badges\": {\n    \"badgeName1\": \"level\",\n    \"badgeName2\": \"level\"\n  },\n")
	b.WriteString("  \"buildName\": \"string\",\n")
	b.WriteString("  \"tier1MaxPlusOne\": \"string (HoF special badge)\",\n")
	b.WriteString("  \"tier2MaxPlusOne\": \"string (Gold special badge)\"\n")
	b.WriteString("}")
	return b.String()
}

func systemPrompt(prefs model.Preferences, plan Plan) string {
	pretty, _ := json.MarshalIndent(prefs, "", "  ")
	position := prefs.Position
	if position == "" {
		position = "Based on playstyle and preferences"
	}
	h := plan.Height
	if h == "" {
		h = "Optimal for position and playstyle"
	}
	return fmt.Sprintf(systemTemplate, pretty, position, h, schema())
}

func userPrompt(prefs model.Preferences, plan Plan) string {
	compact, _ := json.Marshal(prefs)
	reqs, _ := json.Marshal(nonNil(plan.Requirements))
	weights, _ := json.Marshal(nonNil(plan.Weights))
	return fmt.Sprintf(userTemplate, compact, plan.Height, plan.Inches, plan.Budget, reqs, weights)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
