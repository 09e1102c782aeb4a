package negotiation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Comparable rents outside this band of the tenant's rent are treated as unrelated numbers.
const (
	sanityBandLow  = 0.5
	sanityBandHigh = 1.3

	maxAreaDescription = 240

	// bytes either side of a percentage searched for a direction word
	growthContextBefore = 48
	growthContextAfter  = 24
)

var (
	currencyRe = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)(\.\d{1,2})?`)
	percentRe  = regexp.MustCompile(`(?i)([+-]?\d+(?:\.\d+)?)\s?(?:%|percent\b)`)

	belowMarketRe = regexp.MustCompile(`(?i)below[- ](?:the )?market|under[- ]market|below (?:the )?(?:area |local )?average|cheaper (?:units|listings|options)`)
	highVacancyRe = regexp.MustCompile(`(?i)high(?:er)? vacanc|rising vacanc|elevated vacanc|vacanc(?:y|ies)(?: rates?)? (?:is |are )?(?:high|rising|elevated|increasing|up)|many vacant|oversupply`)
	decliningRe   = regexp.MustCompile(`(?i)\b(?:rents?|rental rates?|prices?|asking)\W+(?:\w+\W+){0,4}?(?:declin|decreas|fall|fell|drop|down\b|slip|soften)|` +
		`\b(?:declin\w*|decreas\w*|falling|dropping|softening|lower)\s+(?:\w+\s+){0,2}?(?:rents?|prices?|asking)\b`)
	landlordRe = regexp.MustCompile(`(?i)competitive|high[- ]demand|bidding war|tight market|low vacanc|` +
		`vacanc(?:y|ies)(?: rates?)? (?:has |have |is |are )?(?:decreas|declin|fall|fell|fallen|drop|tighten|shrink)`)

	downWordRe = regexp.MustCompile(`(?i)\b(?:declin\w*|decreas\w*|fell|fallen|falling|fall|dropped|dropping|drop|down|lower|slipped|softened|cut)\b`)
	upWordRe   = regexp.MustCompile(`(?i)\b(?:ris(?:e|es|en|ing)|rose|increas\w*|up|climb\w*|grew|grown|growth|higher|jump\w*)\b`)

	sentenceEndRe = regexp.MustCompile(`[.!?](?:\s|$)|\n`)
)

const (
	evidenceBelowMarket = "Market commentary indicates comparable units are renting below your current rate"
	evidenceHighVacancy = "Elevated vacancy in the area means landlords compete for tenants"
	evidenceDeclining   = "Local rents are reported to be declining"
)

// ParseEvidence extracts comparable rents, a market-condition label, a growth figure
// and evidence bullets from free-form market commentary. It never fails; text with no
// recognizable signal yields a record with empty lists.
func ParseEvidence(text string, currentRent float64) MarketIntelligence {
	out := MarketIntelligence{
		ComparableProperties: []ComparableProperty{},
		NegotiationEvidence:  []string{},
	}

	var sum float64
	for _, m := range currencyRe.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "")+m[2], 64)
		if err != nil || v <= 0 {
			continue
		}
		if currentRent > 0 && (v < sanityBandLow*currentRent || v > sanityBandHigh*currentRent) {
			continue
		}
		out.ComparableProperties = append(out.ComparableProperties, ComparableProperty{Rent: v, Type: "reported"})
		sum += v
	}
	if n := len(out.ComparableProperties); n > 0 {
		avg := roundCents(sum / float64(n))
		out.MarketTrends.AvgRent = &avg
	}

	highVacancy := highVacancyRe.MatchString(text)
	declining := decliningRe.MatchString(text)
	switch {
	case highVacancy || declining:
		out.MarketTrends.MarketCondition = PowerTenantFavored
	case landlordRe.MatchString(text):
		out.MarketTrends.MarketCondition = PowerLandlordFavored
	default:
		out.MarketTrends.MarketCondition = PowerBalanced
	}

	out.MarketTrends.RentGrowth = "stable"
	if loc := percentRe.FindStringSubmatchIndex(text); loc != nil {
		out.MarketTrends.RentGrowth = signedGrowth(text, loc[2], loc[3]) + "%"
	}

	if belowMarketRe.MatchString(text) {
		out.NegotiationEvidence = append(out.NegotiationEvidence, evidenceBelowMarket)
	}
	if highVacancy {
		out.NegotiationEvidence = append(out.NegotiationEvidence, evidenceHighVacancy)
	}
	if declining {
		out.NegotiationEvidence = append(out.NegotiationEvidence, evidenceDeclining)
	}

	out.LocationSpecificData.AreaDescription = firstSentence(text)
	return out
}

// signedGrowth returns the number at text[start:end] with an explicit sign taken from
// the nearest direction word in the same sentence. A number with no nearby direction
// word stays unsigned.
func signedGrowth(text string, start, end int) string {
	num := text[start:end]
	if strings.HasPrefix(num, "+") || strings.HasPrefix(num, "-") {
		return num
	}
	before := text[max(0, start-growthContextBefore):start]
	if ends := sentenceEndRe.FindAllStringIndex(before, -1); len(ends) > 0 {
		before = before[ends[len(ends)-1][1]:]
	}
	after := text[end:min(len(text), end+growthContextAfter)]
	if loc := sentenceEndRe.FindStringIndex(after); loc != nil {
		after = after[:loc[0]]
	}
	down := lastMatch(downWordRe, before)
	up := lastMatch(upWordRe, before)
	switch {
	case down > up:
		return "-" + num
	case up > down:
		return "+" + num
	}
	switch {
	case downWordRe.MatchString(after) && !upWordRe.MatchString(after):
		return "-" + num
	case upWordRe.MatchString(after) && !downWordRe.MatchString(after):
		return "+" + num
	}
	return num
}

// lastMatch is the end offset of the last match of re in s, or -1.
func lastMatch(re *regexp.Regexp, s string) int {
	all := re.FindAllStringIndex(s, -1)
	if len(all) == 0 {
		return -1
	}
	return all[len(all)-1][1]
}

func firstSentence(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	if loc := sentenceEndRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = strings.TrimSpace(s)
	if len(s) > maxAreaDescription {
		cut := maxAreaDescription
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.TrimSpace(s[:cut]) + "..."
	}
	return s
}
