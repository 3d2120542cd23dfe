package retrieval

import (
	"github.com/profile-chat/backend/internal/corpus"
	"github.com/profile-chat/backend/internal/tokenizer"
)

// BridgeRule synthesizes a hand-authored hit for a foreseeable query the
// corpus does not cover directly. Rules run after generic scoring and stay
// separate from it so new domain rules never touch the Jaccard engine.
type BridgeRule struct {
	Name string
	// Triggers fires the rule when any token matches the query set.
	Triggers []string
	// AnchorID names the closest real anchor; the rule is skipped when the
	// corpus has no such anchor.
	AnchorID string
	Score    float64
	// Text is the per-locale snippet surfaced to the model.
	Text map[string]string
}

// DefaultBridgeRules covers the recurring recruiter-question gaps. Scores sit
// in the 0.3–0.4 band: above noise, below any genuine lexical match.
func DefaultBridgeRules() []BridgeRule {
	return []BridgeRule{
		{
			Name: "container-platforms",
			Triggers: []string{
				"kubernetes", "k8s", "docker", "container", "containers",
				"helm", "openshift", "terraform", "nomad",
			},
			AnchorID: "skill-cloud-infrastructure",
			Score:    0.35,
			Text: map[string]string{
				"en": "Closest related experience is cloud and container infrastructure. Mention only what the linked skill lists; do not claim direct production experience with the asked technology.",
				"ja": "最も近い経験はクラウドおよびコンテナ基盤です。リンク先のスキルに記載された内容のみ言及し、質問された技術の実務経験を断定しないでください。",
				"zh": "最接近的经验是云与容器基础设施。仅提及链接技能中列出的内容，不要声称对所问技术有直接生产经验。",
			},
		},
		{
			Name: "leadership",
			Triggers: []string{
				"lead", "leader", "leadership", "mentor", "mentoring",
				"team", "manage", "manager", "management",
			},
			AnchorID: "resume",
			Score:    0.32,
			Text: map[string]string{
				"en": "Leadership and mentoring experience is documented across the work history; see the linked resume for team-lead roles.",
				"ja": "リーダーシップとメンタリングの経験は職務経歴に記載されています。チームリードの役割はリンク先の履歴書を参照してください。",
				"zh": "领导和指导经验记录在工作经历中，团队负责人的职位请参见链接的简历。",
			},
		},
		{
			Name: "cost-efficiency",
			Triggers: []string{
				"performance", "efficiency", "reliability", "observability",
				"cost", "scaling", "scalability",
			},
			AnchorID: "resume",
			Score:    0.3,
			Text: map[string]string{
				"en": "Performance, reliability and cost work appears throughout the project records; the resume links the relevant roles.",
				"ja": "パフォーマンス・信頼性・コストに関する取り組みはプロジェクト実績に含まれています。該当する役割は履歴書を参照してください。",
				"zh": "性能、可靠性和成本方面的工作贯穿于项目记录中，相关职位见简历。",
			},
		},
	}
}

// bridgeHits evaluates the ordered rule list against the expanded query.
func (e *Engine) bridgeHits(query tokenizer.Set, locale string) []Hit {
	var hits []Hit
	for _, rule := range e.bridges {
		if !triggered(query, rule.Triggers) {
			continue
		}
		anchor, ok := e.res.AnchorByID[rule.AnchorID]
		if !ok {
			continue
		}
		payload, ok := anchor.Locales[locale]
		if !ok {
			payload, ok = anchor.Locales[corpus.DefaultLocale]
		}
		if !ok {
			continue
		}
		text := rule.Text[locale]
		if text == "" {
			text = rule.Text[corpus.DefaultLocale]
		}
		hits = append(hits, Hit{
			AnchorID:   rule.AnchorID,
			SourceType: "bridge",
			SourceID:   rule.Name,
			Title:      payload.Name,
			Href:       payload.Href,
			Text:       text,
			Score:      rule.Score,
			Bridge:     true,
		})
	}
	return hits
}

func triggered(query tokenizer.Set, triggers []string) bool {
	for _, trigger := range triggers {
		if query.Has(trigger) {
			return true
		}
	}
	return false
}
