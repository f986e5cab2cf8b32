package instagram

import "strings"

// Instagram caps captions at 30 hashtags.
const MaxHashtags = 30

var baseTaxHashtags = []string{
	"recuperacaotributaria", "creditostributarios", "impostos",
	"contabilidade", "gestaofinanceira", "pme", "pequenasempresas",
	"mediasempresas", "tributacao", "planejamentotributario",
}

var topicHashtags = map[string][]string{
	"pis_cofins": {"pis", "cofins", "naocumulatividade", "creditos"},
	"icms":       {"icms", "substituicaotributaria", "basedecalculo"},
	"inss":       {"inss", "verbasindenizatorias", "folhadepagamento"},
	"general":    {"dicastributarias", "consultoriatributaria"},
}

// TaxHashtags returns the hashtag set for tax content of the given
// topic, deduplicated and capped at the Instagram limit. Unknown
// topics fall back to the general set.
func TaxHashtags(topic string, keywords []string) []string {
	seen := make(map[string]bool)
	tags := make([]string, 0, MaxHashtags)

	add := func(tag string) {
		tag = strings.ToLower(strings.ReplaceAll(tag, " ", ""))
		if tag == "" || seen[tag] || len(tags) >= MaxHashtags {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, tag := range baseTaxHashtags {
		add(tag)
	}
	extra, ok := topicHashtags[topic]
	if !ok {
		extra = topicHashtags["general"]
	}
	for _, tag := range extra {
		add(tag)
	}
	for _, kw := range keywords {
		add(kw)
	}
	return tags
}
