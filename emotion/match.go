package emotion

import "strings"

// SynonymTableVersion changes whenever the synonym table below changes.
const SynonymTableVersion = 1

type synonymEntry struct {
	label    string
	keywords []string
}

// synonyms is consulted in this order, keywords in listed order.
var synonyms = []synonymEntry{
	{Happy, []string{
		"joy", "glad", "pleased", "delight", "cheerful", "positive",
		"기쁨", "즐거움", "행복감", "좋아", "좋은", "즐거운", "기쁜", "긍정적",
	}},
	{Sad, []string{
		"sorrow", "depressed", "gloomy", "tears", "grief", "hurt", "negative",
		"슬픔", "우울", "눈물", "아픔", "상처", "괴로움", "고통", "부정적",
	}},
	{Angry, []string{
		"anger", "furious", "rage", "annoyed", "irritated", "frustrated",
		"화", "분노", "짜증", "불만", "격분", "화난", "화가", "싫어",
	}},
	{Surprised, []string{
		"surprise", "shock", "astonish", "amazed", "startled", "unexpected", "sudden",
		"놀람", "충격", "경악", "당황", "깜짝", "예상치 못한", "갑작스러운",
	}},
	{Neutral, []string{
		"calm", "ordinary", "normal", "plain", "indifferent", "composed",
		"보통", "일반적", "평범", "중립", "무감정", "담담", "차분",
	}},
}

// Match maps a raw model answer onto one of labels. It tries, in order:
// equality or prefix/suffix, substring, the synonym table; anything else
// is Neutral. Comparison is case-insensitive and the first hit in label
// order wins within a tier.
func Match(raw string, labels []string) string {
	r := strings.ToLower(raw)
	if r == "" {
		return Neutral
	}

	for _, l := range labels {
		ll := strings.ToLower(l)
		if ll == "" {
			continue
		}
		if r == ll || strings.HasSuffix(r, ll) || strings.HasPrefix(r, ll) {
			return l
		}
	}

	for _, l := range labels {
		ll := strings.ToLower(l)
		if ll != "" && strings.Contains(r, ll) {
			return l
		}
	}

	for _, e := range synonyms {
		if !contains(labels, e.label) {
			continue
		}
		for _, kw := range e.keywords {
			if strings.Contains(r, kw) {
				return e.label
			}
		}
	}

	return Neutral
}

func contains(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
