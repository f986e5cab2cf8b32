package services

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"jusfiscal/config"
	"jusfiscal/mail"
	"jusfiscal/models"
)

// OutreachService sends personalized first-contact and follow-up
// messages to leads and records every delivery as an interaction.
type OutreachService struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
	Mail   *mail.Sender
	Leads  *LeadService
}

// NewOutreachService creates an outreach service.
func NewOutreachService(cfg *config.Config, db *gorm.DB, logger *zap.Logger, sender *mail.Sender, leads *LeadService) *OutreachService {
	return &OutreachService{Config: cfg, DB: db, Logger: logger, Mail: sender, Leads: leads}
}

// SendResult reports a single outreach delivery.
type SendResult struct {
	Success   bool   `json:"success"`
	Channel   string `json:"channel,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Simulated bool   `json:"simulated,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SendInitialEmail sends the first-contact email to a lead, optionally
// rendered from a named template type.
func (s *OutreachService) SendInitialEmail(leadID uint, templateType string) (*SendResult, error) {
	var lead models.Lead
	if err := s.DB.First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SendResult{Success: false, Error: "lead not found"}, nil
		}
		return nil, err
	}
	if lead.Email == "" {
		return &SendResult{Success: false, Error: "lead has no email address"}, nil
	}

	if templateType == "" {
		templateType = "email"
	}
	subject, body, err := s.renderEmail(&lead, templateType)
	if err != nil {
		return nil, err
	}

	messageID, err := s.Mail.Send(lead.Email, subject, body)
	if err != nil {
		s.Logger.Warn("Email delivery failed",
			zap.Uint("lead_id", leadID), zap.Error(err))
		return &SendResult{Success: false, Channel: "email", Error: err.Error()}, nil
	}

	if _, err := s.Leads.RecordInteraction(leadID, &InteractionInput{
		InteractionType: "email",
		Channel:         "email",
		Subject:         subject,
		Message:         body,
	}); err != nil {
		return nil, err
	}

	return &SendResult{
		Success:   true,
		Channel:   "email",
		MessageID: messageID,
		Simulated: s.Mail.Simulated(),
	}, nil
}

// renderEmail builds subject and body for a lead from the stored
// template of the given content type, falling back to a built-in text
// when no template exists.
func (s *OutreachService) renderEmail(lead *models.Lead, templateType string) (string, string, error) {
	subject := fmt.Sprintf("Oportunidade de Recuperação Tributária - %s", lead.CompanyName)

	var template models.ContentTemplate
	err := s.DB.Where("content_type = ?", templateType).First(&template).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", err
		}
		return subject, s.defaultEmailBody(lead), nil
	}

	body := template.TemplateContent
	for key, value := range s.personalization(lead) {
		body = strings.ReplaceAll(body, "{"+key+"}", value)
	}
	return subject, body, nil
}

func (s *OutreachService) defaultEmailBody(lead *models.Lead) string {
	p := s.personalization(lead)
	return fmt.Sprintf(`Prezado(a) %s,

%s

%s %s

Gostaríamos de agendar uma conversa para apresentar como podemos ajudar a %s a recuperar créditos tributários.

Atenciosamente,
Equipe JusFiscal`,
		p["contact_name"], p["sector_intro"], p["sector_opportunity"], p["size_value_prop"], lead.CompanyName)
}

// sectorIntros and sectorOpportunities drive the per-sector text of
// the outreach messages.
var sectorIntros = map[string]string{
	"Indústria":   "Sabemos que o setor industrial enfrenta uma das maiores cargas tributárias do país.",
	"Comércio":    "O comércio brasileiro convive diariamente com a complexidade do ICMS e do PIS/COFINS.",
	"Serviços":    "Empresas de serviços frequentemente pagam tributos acima do devido sem perceber.",
	"Construção":  "O setor de construção civil acumula créditos tributários significativos em suas operações.",
	"Tecnologia":  "Empresas de tecnologia têm direito a diversos incentivos e créditos fiscais pouco aproveitados.",
}

var sectorOpportunities = map[string]string{
	"Indústria":   "Identificamos oportunidades de recuperação de créditos de IPI, PIS/COFINS sobre insumos e ICMS-ST.",
	"Comércio":    "Identificamos oportunidades de recuperação de ICMS-ST e exclusão do ICMS da base do PIS/COFINS.",
	"Serviços":    "Identificamos oportunidades na revisão do ISS e na recuperação de INSS sobre verbas indenizatórias.",
	"Construção":  "Identificamos oportunidades de recuperação de INSS sobre a folha e créditos de materiais.",
	"Tecnologia":  "Identificamos oportunidades em incentivos da Lei do Bem e créditos de PIS/COFINS.",
}

var sizeValueProps = map[string]string{
	"Micro":   "Para empresas do seu porte, cada real recuperado faz diferença no fluxo de caixa.",
	"Pequena": "Empresas de pequeno porte como a sua costumam recuperar valores expressivos em poucos meses.",
	"Média":   "Empresas de médio porte têm, em média, os maiores volumes de créditos recuperáveis.",
}

// personalization builds the placeholder map used to render message
// templates for a lead.
func (s *OutreachService) personalization(lead *models.Lead) map[string]string {
	contact := lead.ContactName
	if contact == "" {
		contact = "Responsável"
	}
	intro, ok := sectorIntros[lead.Sector]
	if !ok {
		intro = "Sabemos que a carga tributária brasileira pesa sobre empresas de todos os setores."
	}
	opportunity, ok := sectorOpportunities[lead.Sector]
	if !ok {
		opportunity = "Identificamos oportunidades de recuperação de créditos tributários para o seu negócio."
	}
	valueProp, ok := sizeValueProps[lead.CompanySize]
	if !ok {
		valueProp = "Nossa análise é gratuita e sem compromisso."
	}
	return map[string]string{
		"company_name":       lead.CompanyName,
		"contact_name":       contact,
		"sector":             lead.Sector,
		"sector_intro":       intro,
		"sector_opportunity": opportunity,
		"size_value_prop":    valueProp,
	}
}

// linkedInMessage builds the outreach text for a LinkedIn message.
func (s *OutreachService) linkedInMessage(lead *models.Lead, messageType string) string {
	p := s.personalization(lead)
	switch messageType {
	case "initial":
		return fmt.Sprintf(`Olá %s, tudo bem?

%s

A JusFiscal é especializada em recuperação de créditos tributários. %s

Podemos conversar sobre como ajudar a %s?`,
			p["contact_name"], p["sector_intro"], p["sector_opportunity"], lead.CompanyName)
	case "follow_up":
		return fmt.Sprintf(`Olá %s,

Entrei em contato recentemente sobre oportunidades de recuperação tributária para a %s. Conseguiu avaliar nossa proposta?

Fico à disposição para uma conversa rápida.`,
			p["contact_name"], lead.CompanyName)
	default:
		return fmt.Sprintf(`Olá %s, a JusFiscal identifica e recupera créditos tributários para empresas como a %s. Podemos conversar?`,
			p["contact_name"], lead.CompanyName)
	}
}

// instagramMessage builds the outreach text for an Instagram DM.
func (s *OutreachService) instagramMessage(lead *models.Lead, messageType string) string {
	p := s.personalization(lead)
	switch messageType {
	case "initial":
		return fmt.Sprintf(`Olá! 👋 Vimos o perfil da %s e acreditamos que sua empresa pode ter créditos tributários a recuperar. %s Quer saber mais?`,
			lead.CompanyName, p["sector_opportunity"])
	case "follow_up":
		return fmt.Sprintf(`Olá! Passando para lembrar da nossa análise tributária gratuita para a %s. Alguma dúvida que possamos esclarecer? 😊`,
			lead.CompanyName)
	default:
		return fmt.Sprintf(`Olá! A JusFiscal ajuda empresas como a %s a recuperar tributos pagos indevidamente. Vamos conversar?`,
			lead.CompanyName)
	}
}

// SendLinkedInMessage sends (currently simulates) a LinkedIn direct
// message to a lead and records the interaction.
func (s *OutreachService) SendLinkedInMessage(leadID uint, messageType string) (*SendResult, error) {
	var lead models.Lead
	if err := s.DB.First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SendResult{Success: false, Error: "lead not found"}, nil
		}
		return nil, err
	}
	if lead.LinkedInProfile == "" {
		return &SendResult{Success: false, Error: "lead has no LinkedIn profile"}, nil
	}

	message := s.linkedInMessage(&lead, messageType)
	messageID := fmt.Sprintf("li_sim_%d", lead.ID)

	if _, err := s.Leads.RecordInteraction(leadID, &InteractionInput{
		InteractionType: "linkedin_message",
		Channel:         "linkedin",
		Message:         message,
	}); err != nil {
		return nil, err
	}

	return &SendResult{Success: true, Channel: "linkedin", MessageID: messageID, Simulated: true}, nil
}

// SendInstagramDM sends (currently simulates) an Instagram direct
// message to a lead and records the interaction.
func (s *OutreachService) SendInstagramDM(leadID uint, messageType string) (*SendResult, error) {
	var lead models.Lead
	if err := s.DB.First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SendResult{Success: false, Error: "lead not found"}, nil
		}
		return nil, err
	}
	if lead.InstagramProfile == "" {
		return &SendResult{Success: false, Error: "lead has no Instagram profile"}, nil
	}

	message := s.instagramMessage(&lead, messageType)
	messageID := fmt.Sprintf("ig_sim_%d", lead.ID)

	if _, err := s.Leads.RecordInteraction(leadID, &InteractionInput{
		InteractionType: "instagram_dm",
		Channel:         "instagram",
		Message:         message,
	}); err != nil {
		return nil, err
	}

	return &SendResult{Success: true, Channel: "instagram", MessageID: messageID, Simulated: true}, nil
}

// CampaignInput configures an outreach campaign run.
type CampaignInput struct {
	MinScore int      `json:"min_score"`
	MaxLeads int      `json:"max_leads"`
	Channels []string `json:"channels"`
}

// CampaignResult aggregates a campaign run.
type CampaignResult struct {
	Success        bool           `json:"success"`
	TotalLeads     int            `json:"total_leads"`
	ContactedCount int            `json:"contacted_count"`
	ByChannel      map[string]int `json:"by_channel"`
	Errors         []string       `json:"errors"`
}

// RunCampaign contacts the best qualified leads over the requested
// channels. Per-lead failures are collected, never fatal.
func (s *OutreachService) RunCampaign(input CampaignInput) (*CampaignResult, error) {
	minScore := input.MinScore
	if minScore <= 0 {
		minScore = 50
	}
	maxLeads := input.MaxLeads
	if maxLeads <= 0 {
		maxLeads = 10
	}
	channels := input.Channels
	if len(channels) == 0 {
		channels = []string{"email"}
	}

	leads, err := s.Leads.QualifiedLeads(minScore, maxLeads)
	if err != nil {
		return nil, err
	}

	result := &CampaignResult{
		Success:    true,
		TotalLeads: len(leads),
		ByChannel:  map[string]int{},
		Errors:     []string{},
	}

	for _, lead := range leads {
		contacted := false
		for _, channel := range channels {
			send, err := s.sendOnChannel(lead.ID, channel, "initial")
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("lead %d (%s): %v", lead.ID, channel, err))
				continue
			}
			if !send.Success {
				result.Errors = append(result.Errors, fmt.Sprintf("lead %d (%s): %s", lead.ID, channel, send.Error))
				continue
			}
			result.ByChannel[channel]++
			contacted = true
		}
		if contacted {
			result.ContactedCount++
		}
	}

	s.Logger.Info("Outreach campaign finished",
		zap.Int("total", result.TotalLeads),
		zap.Int("contacted", result.ContactedCount),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

func (s *OutreachService) sendOnChannel(leadID uint, channel, messageType string) (*SendResult, error) {
	switch channel {
	case "email":
		return s.SendInitialEmail(leadID, "email")
	case "linkedin":
		return s.SendLinkedInMessage(leadID, messageType)
	case "instagram":
		return s.SendInstagramDM(leadID, messageType)
	default:
		return &SendResult{Success: false, Error: fmt.Sprintf("unknown channel: %s", channel)}, nil
	}
}

// RunFollowUpCampaign re-contacts leads whose last contact is at least
// daysSinceContact days old, on the channel of their last interaction.
// Leads without a usable last channel fall back to email.
func (s *OutreachService) RunFollowUpCampaign(daysSinceContact int) (*CampaignResult, error) {
	if daysSinceContact <= 0 {
		daysSinceContact = 7
	}

	leads, err := s.Leads.FollowUpLeads(daysSinceContact)
	if err != nil {
		return nil, err
	}

	result := &CampaignResult{
		Success:    true,
		TotalLeads: len(leads),
		ByChannel:  map[string]int{},
		Errors:     []string{},
	}

	for _, lead := range leads {
		channel := s.lastChannel(lead.ID)

		var send *SendResult
		switch channel {
		case "linkedin":
			send, err = s.SendLinkedInMessage(lead.ID, "follow_up")
		case "instagram":
			send, err = s.SendInstagramDM(lead.ID, "follow_up")
		default:
			send, err = s.SendInitialEmail(lead.ID, "email_follow_up")
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("lead %d: %v", lead.ID, err))
			continue
		}
		if !send.Success {
			result.Errors = append(result.Errors, fmt.Sprintf("lead %d: %s", lead.ID, send.Error))
			continue
		}
		result.ByChannel[send.Channel]++
		result.ContactedCount++
	}

	return result, nil
}

// lastChannel returns the channel of a lead's most recent interaction,
// empty when there is none.
func (s *OutreachService) lastChannel(leadID uint) string {
	var interaction models.LeadInteraction
	err := s.DB.
		Where("lead_id = ?", leadID).
		Order("sent_at desc").
		First(&interaction).Error
	if err != nil {
		return ""
	}
	return interaction.Channel
}
