package services

import (
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jusfiscal/models"
)

// defaultTemplates are installed on first boot so outreach and
// generation work before anyone edits templates.
var defaultTemplates = []models.ContentTemplate{
	{
		Name:        "Artigo padrão",
		ContentType: "article",
		TemplateContent: `Introdução apresentando o problema tributário.

Contexto legal e fundamentação.

Oportunidades práticas de recuperação para a empresa.

Conclusão com chamada para ação: agende uma análise gratuita com a JusFiscal.`,
	},
	{
		Name:        "Post padrão",
		ContentType: "post",
		TemplateContent: `Gancho inicial sobre o problema tributário.

Dado ou insight principal.

Chamada para ação: fale com a JusFiscal.`,
	},
	{
		Name:        "Post Instagram",
		ContentType: "instagram_post",
		TemplateContent: `Abertura curta e visual sobre o tema.

Benefício direto para a empresa. 💰

CTA: link na bio para análise gratuita.`,
	},
	{
		Name:        "Email de prospecção",
		ContentType: "email",
		TemplateContent: `Prezado(a) {contact_name},

{sector_intro}

{sector_opportunity} {size_value_prop}

Gostaríamos de agendar uma conversa rápida para apresentar como podemos ajudar a {company_name}.

Atenciosamente,
Equipe JusFiscal`,
	},
	{
		Name:        "Email de follow-up",
		ContentType: "email_follow_up",
		TemplateContent: `Prezado(a) {contact_name},

Entramos em contato recentemente sobre oportunidades de recuperação tributária para a {company_name}.

Conseguiu avaliar nossa proposta? Seguimos à disposição para uma análise gratuita e sem compromisso.

Atenciosamente,
Equipe JusFiscal`,
	},
}

// defaultTopics seed the generation backlog with the recurring themes
// of the practice.
var defaultTopics = []models.ContentTopic{
	{Topic: "Exclusão do ICMS da base de cálculo do PIS/COFINS", Category: "pis_cofins", Priority: 10,
		TargetSectors: datatypes.NewJSONSlice([]string{"Comércio", "Indústria"}),
		Keywords:      datatypes.NewJSONSlice([]string{"ICMS", "PIS", "COFINS", "tese do século"})},
	{Topic: "Créditos de PIS/COFINS sobre insumos", Category: "pis_cofins", Priority: 9,
		TargetSectors: datatypes.NewJSONSlice([]string{"Indústria"}),
		Keywords:      datatypes.NewJSONSlice([]string{"PIS", "COFINS", "insumos", "créditos"})},
	{Topic: "Recuperação de ICMS-ST pago a maior", Category: "icms", Priority: 9,
		TargetSectors: datatypes.NewJSONSlice([]string{"Comércio"}),
		Keywords:      datatypes.NewJSONSlice([]string{"ICMS-ST", "substituição tributária", "restituição"})},
	{Topic: "INSS sobre verbas indenizatórias", Category: "inss", Priority: 8,
		TargetSectors: datatypes.NewJSONSlice([]string{"Serviços", "Indústria", "Comércio"}),
		Keywords:      datatypes.NewJSONSlice([]string{"INSS", "folha de pagamento", "verbas indenizatórias"})},
	{Topic: "Créditos de IPI na aquisição de insumos", Category: "ipi", Priority: 7,
		TargetSectors: datatypes.NewJSONSlice([]string{"Indústria"}),
		Keywords:      datatypes.NewJSONSlice([]string{"IPI", "insumos", "industrialização"})},
	{Topic: "Lei do Bem: incentivos para inovação", Category: "incentivos", Priority: 7,
		TargetSectors: datatypes.NewJSONSlice([]string{"Tecnologia"}),
		Keywords:      datatypes.NewJSONSlice([]string{"Lei do Bem", "inovação", "P&D", "incentivos fiscais"})},
	{Topic: "Revisão do enquadramento no Simples Nacional", Category: "regime", Priority: 6,
		TargetSectors: datatypes.NewJSONSlice([]string{"Serviços", "Comércio"}),
		Keywords:      datatypes.NewJSONSlice([]string{"Simples Nacional", "enquadramento", "planejamento tributário"})},
	{Topic: "Exclusão do ISS da base do PIS/COFINS", Category: "pis_cofins", Priority: 6,
		TargetSectors: datatypes.NewJSONSlice([]string{"Serviços"}),
		Keywords:      datatypes.NewJSONSlice([]string{"ISS", "PIS", "COFINS", "teses tributárias"})},
	{Topic: "Desoneração da folha na construção civil", Category: "inss", Priority: 6,
		TargetSectors: datatypes.NewJSONSlice([]string{"Construção"}),
		Keywords:      datatypes.NewJSONSlice([]string{"desoneração", "CPRB", "construção civil"})},
	{Topic: "Compensação tributária: como funciona na prática", Category: "general", Priority: 5,
		TargetSectors: datatypes.NewJSONSlice([]string{"Serviços", "Comércio", "Indústria"}),
		Keywords:      datatypes.NewJSONSlice([]string{"compensação", "PER/DCOMP", "créditos tributários"})},
	{Topic: "Prazo prescricional para recuperar tributos", Category: "general", Priority: 5,
		TargetSectors: datatypes.NewJSONSlice([]string{"Serviços", "Comércio", "Indústria"}),
		Keywords:      datatypes.NewJSONSlice([]string{"prescrição", "5 anos", "restituição"})},
	{Topic: "Como identificar créditos tributários no seu balanço", Category: "general", Priority: 4,
		TargetSectors: datatypes.NewJSONSlice([]string{"Serviços", "Comércio", "Indústria", "Construção", "Tecnologia"}),
		Keywords:      datatypes.NewJSONSlice([]string{"auditoria fiscal", "balanço", "créditos tributários"})},
}

// SeedDefaults installs the default templates and topics. Each table
// is only seeded while empty, so edits survive restarts.
func SeedDefaults(db *gorm.DB, logger *zap.Logger) error {
	var templateCount int64
	if err := db.Model(&models.ContentTemplate{}).Count(&templateCount).Error; err != nil {
		return err
	}
	if templateCount == 0 {
		if err := db.Create(&defaultTemplates).Error; err != nil {
			return err
		}
		logger.Info("Default content templates seeded", zap.Int("count", len(defaultTemplates)))
	}

	var topicCount int64
	if err := db.Model(&models.ContentTopic{}).Count(&topicCount).Error; err != nil {
		return err
	}
	if topicCount == 0 {
		if err := db.Create(&defaultTopics).Error; err != nil {
			return err
		}
		logger.Info("Default content topics seeded", zap.Int("count", len(defaultTopics)))
	}

	return nil
}
