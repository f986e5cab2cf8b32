package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"jusfiscal/mail"
	"jusfiscal/models"
	"jusfiscal/providers/registry"
)

func newOutreachService(t *testing.T) (*OutreachService, *gorm.DB) {
	cfg := testConfig()
	db := testDB(t)
	leads := NewLeadService(cfg, db, testLogger(), registry.NewFetcher(cfg, testLogger()))
	sender := mail.NewSender(cfg, testLogger())
	return NewOutreachService(cfg, db, testLogger(), sender, leads), db
}

func TestSendInitialEmailSimulated(t *testing.T) {
	s, db := newOutreachService(t)
	lead := models.Lead{CompanyName: "Empresa X", Email: "contato@empresa.com.br", Sector: "Indústria", Status: models.LeadStatusNew}
	require.NoError(t, db.Create(&lead).Error)

	result, err := s.SendInitialEmail(lead.ID, "")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "email", result.Channel)
	assert.True(t, result.Simulated)
	assert.NotEmpty(t, result.MessageID)

	var interactions []models.LeadInteraction
	require.NoError(t, db.Where("lead_id = ?", lead.ID).Find(&interactions).Error)
	require.Len(t, interactions, 1)
	assert.Equal(t, "email", interactions[0].Channel)
	assert.Contains(t, interactions[0].Subject, "Empresa X")

	var stored models.Lead
	require.NoError(t, db.First(&stored, lead.ID).Error)
	assert.Equal(t, models.LeadStatusContacted, stored.Status)
}

func TestSendInitialEmailWithoutAddress(t *testing.T) {
	s, db := newOutreachService(t)
	lead := models.Lead{CompanyName: "Sem Email"}
	require.NoError(t, db.Create(&lead).Error)

	result, err := s.SendInitialEmail(lead.ID, "")
	require.NoError(t, err)
	assert.False(t, result.Success)

	// A refused send leaves no interaction behind.
	var count int64
	db.Model(&models.LeadInteraction{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSendInitialEmailRendersTemplate(t *testing.T) {
	s, db := newOutreachService(t)
	require.NoError(t, db.Create(&models.ContentTemplate{
		Name:            "Email de prospecção",
		ContentType:     "email",
		TemplateContent: "Olá {contact_name}, falamos com a {company_name}. {sector_opportunity}",
	}).Error)

	lead := models.Lead{CompanyName: "Construtora Y", ContactName: "João", Sector: "Construção", Email: "j@construtora.com"}
	require.NoError(t, db.Create(&lead).Error)

	result, err := s.SendInitialEmail(lead.ID, "email")
	require.NoError(t, err)
	require.True(t, result.Success)

	var interaction models.LeadInteraction
	require.NoError(t, db.Where("lead_id = ?", lead.ID).First(&interaction).Error)
	assert.Contains(t, interaction.Message, "Olá João")
	assert.Contains(t, interaction.Message, "Construtora Y")
	assert.Contains(t, interaction.Message, "INSS")
	assert.NotContains(t, interaction.Message, "{company_name}")
}

func TestSendLinkedInMessageRequiresProfile(t *testing.T) {
	s, db := newOutreachService(t)
	lead := models.Lead{CompanyName: "Empresa X"}
	require.NoError(t, db.Create(&lead).Error)

	result, err := s.SendLinkedInMessage(lead.ID, "initial")
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestSendLinkedInMessageRecordsInteraction(t *testing.T) {
	s, db := newOutreachService(t)
	lead := models.Lead{CompanyName: "Empresa X", LinkedInProfile: "https://linkedin.com/company/x", ContactName: "Ana"}
	require.NoError(t, db.Create(&lead).Error)

	result, err := s.SendLinkedInMessage(lead.ID, "initial")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.True(t, result.Simulated)

	var interaction models.LeadInteraction
	require.NoError(t, db.Where("lead_id = ?", lead.ID).First(&interaction).Error)
	assert.Equal(t, "linkedin", interaction.Channel)
	assert.Contains(t, interaction.Message, "Ana")
}

func TestSendInstagramDMRecordsInteraction(t *testing.T) {
	s, db := newOutreachService(t)
	lead := models.Lead{CompanyName: "Empresa X", InstagramProfile: "@empresax"}
	require.NoError(t, db.Create(&lead).Error)

	result, err := s.SendInstagramDM(lead.ID, "follow_up")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "instagram", result.Channel)

	var interaction models.LeadInteraction
	require.NoError(t, db.Where("lead_id = ?", lead.ID).First(&interaction).Error)
	assert.Equal(t, "instagram_dm", interaction.InteractionType)
}

func TestRunCampaignContactsQualifiedLeads(t *testing.T) {
	s, db := newOutreachService(t)
	seed := []models.Lead{
		{CompanyName: "Qualificada", Email: "a@b.com", Score: 80, Status: models.LeadStatusNew},
		{CompanyName: "Sem Email", Score: 70, Status: models.LeadStatusNew},
		{CompanyName: "Fraca", Email: "c@d.com", Score: 20, Status: models.LeadStatusNew},
	}
	require.NoError(t, db.Create(&seed).Error)

	result, err := s.RunCampaign(CampaignInput{MinScore: 50, MaxLeads: 10, Channels: []string{"email"}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalLeads)
	assert.Equal(t, 1, result.ContactedCount)
	assert.Equal(t, 1, result.ByChannel["email"])
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no email")
}

func TestRunFollowUpCampaignUsesLastChannel(t *testing.T) {
	s, db := newOutreachService(t)

	tenDaysAgo := time.Now().UTC().AddDate(0, 0, -10)
	viaLinkedIn := models.Lead{CompanyName: "Via LinkedIn", LinkedInProfile: "li", Status: models.LeadStatusContacted, LastContactAt: &tenDaysAgo}
	viaEmail := models.Lead{CompanyName: "Via Email", Email: "e@f.com", Status: models.LeadStatusContacted, LastContactAt: &tenDaysAgo}
	require.NoError(t, db.Create(&viaLinkedIn).Error)
	require.NoError(t, db.Create(&viaEmail).Error)

	require.NoError(t, db.Create(&models.LeadInteraction{
		LeadID: viaLinkedIn.ID, InteractionType: "linkedin_message", Channel: "linkedin", Status: "sent",
		SentAt: tenDaysAgo,
	}).Error)
	require.NoError(t, db.Create(&models.LeadInteraction{
		LeadID: viaEmail.ID, InteractionType: "email", Channel: "email", Status: "sent",
		SentAt: tenDaysAgo,
	}).Error)

	result, err := s.RunFollowUpCampaign(7)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalLeads)
	assert.Equal(t, 2, result.ContactedCount)
	assert.Equal(t, 1, result.ByChannel["linkedin"])
	assert.Equal(t, 1, result.ByChannel["email"])
}

func TestRunFollowUpCampaignFallsBackToEmail(t *testing.T) {
	s, db := newOutreachService(t)

	tenDaysAgo := time.Now().UTC().AddDate(0, 0, -10)
	// Last contact happened on the phone; follow-up falls back to email.
	lead := models.Lead{CompanyName: "Por Telefone", Email: "t@u.com", Status: models.LeadStatusContacted, LastContactAt: &tenDaysAgo}
	require.NoError(t, db.Create(&lead).Error)
	require.NoError(t, db.Create(&models.LeadInteraction{
		LeadID: lead.ID, InteractionType: "call", Channel: "phone", Status: "sent", SentAt: tenDaysAgo,
	}).Error)

	result, err := s.RunFollowUpCampaign(7)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ContactedCount)
	assert.Equal(t, 1, result.ByChannel["email"])
}

func TestPersonalizationDefaults(t *testing.T) {
	s, _ := newOutreachService(t)
	p := s.personalization(&models.Lead{CompanyName: "Empresa X", Sector: "Agronegócio"})
	assert.Equal(t, "Responsável", p["contact_name"])
	assert.NotEmpty(t, p["sector_intro"])
	assert.NotEmpty(t, p["sector_opportunity"])
	assert.NotEmpty(t, p["size_value_prop"])
}
