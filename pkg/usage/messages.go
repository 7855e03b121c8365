package usage

import (
	"golang.org/x/text/language"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// Denial messages shown when the gate rejects a metered action. Every
// (feature, plan) pair resolves to a message: plan-specific text first, then
// the feature's default, so adding a plan to the catalog cannot leave a
// denial without copy.

var supportedLanguages = []language.Tag{
	language.English,            // default
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supportedLanguages)

type messageSet struct {
	perPlan  map[plan.Feature]map[plan.ID]string
	fallback map[plan.Feature]string
}

var denialMessages = map[language.Tag]messageSet{
	language.English: {
		perPlan: map[plan.Feature]map[plan.ID]string{
			plan.FeaturePrompts: {
				plan.IDFree: "You've used all your free AI prompts for this month. Upgrade to Pro for unlimited generations.",
				plan.IDPro:  "You've reached your AI prompt limit for this billing period.",
			},
			plan.FeatureImages: {
				plan.IDFree: "You've reached the free plan's image upload limit. Upgrade to Pro to keep uploading.",
				plan.IDPro:  "You've reached your image upload limit for this billing period.",
			},
			plan.FeatureFigmaExports: {
				plan.IDFree: "Figma exports are limited on the free plan. Upgrade to Pro for unlimited exports.",
				plan.IDPro:  "You've reached your Figma export limit for this billing period.",
			},
			plan.FeatureHTMLExports: {
				plan.IDFree: "You've used all your free HTML exports this month. Upgrade to Pro for unlimited exports.",
				plan.IDPro:  "You've reached your HTML export limit for this billing period.",
			},
		},
		fallback: map[plan.Feature]string{
			plan.FeaturePrompts:      "You've reached your AI prompt limit for this billing period.",
			plan.FeatureImages:       "You've reached your image upload limit for this billing period.",
			plan.FeatureFigmaExports: "You've reached your Figma export limit for this billing period.",
			plan.FeatureHTMLExports:  "You've reached your HTML export limit for this billing period.",
		},
	},
	language.BrazilianPortuguese: {
		perPlan: map[plan.Feature]map[plan.ID]string{
			plan.FeaturePrompts: {
				plan.IDFree: "Você usou todos os prompts de IA gratuitos deste mês. Assine o Pro para gerações ilimitadas.",
				plan.IDPro:  "Você atingiu o limite de prompts de IA deste período de cobrança.",
			},
			plan.FeatureImages: {
				plan.IDFree: "Você atingiu o limite de uploads de imagens do plano gratuito. Assine o Pro para continuar.",
				plan.IDPro:  "Você atingiu o limite de uploads de imagens deste período de cobrança.",
			},
			plan.FeatureFigmaExports: {
				plan.IDFree: "Exportações para Figma são limitadas no plano gratuito. Assine o Pro para exportações ilimitadas.",
				plan.IDPro:  "Você atingiu o limite de exportações para Figma deste período de cobrança.",
			},
			plan.FeatureHTMLExports: {
				plan.IDFree: "Você usou todas as exportações HTML gratuitas deste mês. Assine o Pro para exportações ilimitadas.",
				plan.IDPro:  "Você atingiu o limite de exportações HTML deste período de cobrança.",
			},
		},
		fallback: map[plan.Feature]string{
			plan.FeaturePrompts:      "Você atingiu o limite de prompts de IA deste período de cobrança.",
			plan.FeatureImages:       "Você atingiu o limite de uploads de imagens deste período de cobrança.",
			plan.FeatureFigmaExports: "Você atingiu o limite de exportações para Figma deste período de cobrança.",
			plan.FeatureHTMLExports:  "Você atingiu o limite de exportações HTML deste período de cobrança.",
		},
	},
}

// LimitMessage returns the user-facing denial message for a feature and
// plan, localized by Accept-Language. It is a pure lookup and always returns
// a non-empty string for valid features.
func LimitMessage(f plan.Feature, planID plan.ID, acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		tags = []language.Tag{language.English}
	}
	_, idx, _ := matcher.Match(tags...)
	set := denialMessages[supportedLanguages[idx]]

	if byPlan, ok := set.perPlan[f]; ok {
		if msg, ok := byPlan[planID]; ok {
			return msg
		}
	}
	if msg, ok := set.fallback[f]; ok {
		return msg
	}
	return "You've reached the limit for this feature on your current plan."
}
