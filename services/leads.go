package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jusfiscal/config"
	"jusfiscal/models"
	"jusfiscal/providers/registry"
)

// LeadService manages lead intake, qualification and interactions.
type LeadService struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *zap.Logger
	Registry *registry.Fetcher
}

// NewLeadService creates a lead service.
func NewLeadService(cfg *config.Config, db *gorm.DB, logger *zap.Logger, reg *registry.Fetcher) *LeadService {
	return &LeadService{Config: cfg, DB: db, Logger: logger, Registry: reg}
}

// CreateLeadResult reports the outcome of a lead creation attempt.
type CreateLeadResult struct {
	Success        bool   `json:"success"`
	LeadID         uint   `json:"lead_id,omitempty"`
	Score          int    `json:"score,omitempty"`
	Error          string `json:"error,omitempty"`
	ExistingLeadID uint   `json:"existing_lead_id,omitempty"`
}

// CreateLead stores a new lead. The CNPJ is the natural key: a lead
// with an already known CNPJ is refused and the existing id returned.
// Leads without a CNPJ are created unconditionally.
func (s *LeadService) CreateLead(lead *models.Lead) (*CreateLeadResult, error) {
	if lead.CompanyName == "" {
		return &CreateLeadResult{Success: false, Error: "company_name is required"}, nil
	}

	if lead.CNPJ != "" {
		var existing models.Lead
		err := s.DB.Where("cnpj = ?", lead.CNPJ).First(&existing).Error
		if err == nil {
			return &CreateLeadResult{
				Success:        false,
				Error:          "lead with this CNPJ already exists",
				ExistingLeadID: existing.ID,
			}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if lead.Source == "" {
		lead.Source = "manual"
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	lead.Score = ComputeScore(lead)

	if err := s.DB.Create(lead).Error; err != nil {
		return nil, err
	}

	s.Logger.Info("Lead created",
		zap.Uint("lead_id", lead.ID),
		zap.String("company", lead.CompanyName),
		zap.Int("score", lead.Score))

	return &CreateLeadResult{Success: true, LeadID: lead.ID, Score: lead.Score}, nil
}

// LeadUpdate enumerates the mutable lead fields. Identity (id, cnpj)
// and derived fields (score, status, last_contact_at) are deliberately
// absent; they change only through their own operations.
type LeadUpdate struct {
	CompanyName                *string  `json:"company_name"`
	Sector                     *string  `json:"sector"`
	CompanySize                *string  `json:"company_size"`
	AnnualRevenue              *float64 `json:"annual_revenue"`
	EmployeeCount              *int     `json:"employee_count"`
	ContactName                *string  `json:"contact_name"`
	ContactPosition            *string  `json:"contact_position"`
	Email                      *string  `json:"email"`
	Phone                      *string  `json:"phone"`
	Website                    *string  `json:"website"`
	LinkedInProfile            *string  `json:"linkedin_profile"`
	InstagramProfile           *string  `json:"instagram_profile"`
	City                       *string  `json:"city"`
	State                      *string  `json:"state"`
	Address                    *string  `json:"address"`
	Source                     *string  `json:"source"`
	TaxRegime                  *string  `json:"tax_regime"`
	EstimatedRecoveryPotential *float64 `json:"estimated_recovery_potential"`
}

// Columns returns the update as a column map holding only the fields
// that were actually sent.
func (u *LeadUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	set := func(name string, v interface{}, present bool) {
		if present {
			cols[name] = v
		}
	}
	set("company_name", deref(u.CompanyName), u.CompanyName != nil)
	set("sector", deref(u.Sector), u.Sector != nil)
	set("company_size", deref(u.CompanySize), u.CompanySize != nil)
	set("annual_revenue", u.AnnualRevenue, u.AnnualRevenue != nil)
	set("employee_count", u.EmployeeCount, u.EmployeeCount != nil)
	set("contact_name", deref(u.ContactName), u.ContactName != nil)
	set("contact_position", deref(u.ContactPosition), u.ContactPosition != nil)
	set("email", deref(u.Email), u.Email != nil)
	set("phone", deref(u.Phone), u.Phone != nil)
	set("website", deref(u.Website), u.Website != nil)
	set("linkedin_profile", deref(u.LinkedInProfile), u.LinkedInProfile != nil)
	set("instagram_profile", deref(u.InstagramProfile), u.InstagramProfile != nil)
	set("city", deref(u.City), u.City != nil)
	set("state", deref(u.State), u.State != nil)
	set("address", deref(u.Address), u.Address != nil)
	set("source", deref(u.Source), u.Source != nil)
	set("tax_regime", deref(u.TaxRegime), u.TaxRegime != nil)
	set("estimated_recovery_potential", u.EstimatedRecoveryPotential, u.EstimatedRecoveryPotential != nil)
	return cols
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// UpdateLeadResult reports the outcome of a lead update.
type UpdateLeadResult struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	NewScore int    `json:"new_score,omitempty"`
}

// UpdateLead applies an allow-listed partial update and recomputes the
// score when a score-relevant field changed.
func (s *LeadService) UpdateLead(leadID uint, update *LeadUpdate) (*UpdateLeadResult, error) {
	var lead models.Lead
	if err := s.DB.First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &UpdateLeadResult{Success: false, Error: "lead not found"}, nil
		}
		return nil, err
	}

	cols := update.Columns()
	if len(cols) == 0 {
		return &UpdateLeadResult{Success: false, Error: "no updatable fields provided"}, nil
	}

	if err := s.DB.Model(&lead).Updates(cols).Error; err != nil {
		return nil, err
	}

	if TouchesScore(cols) {
		if err := s.DB.First(&lead, leadID).Error; err != nil {
			return nil, err
		}
		lead.Score = ComputeScore(&lead)
		if err := s.DB.Model(&lead).Update("score", lead.Score).Error; err != nil {
			return nil, err
		}
	}

	return &UpdateLeadResult{Success: true, NewScore: lead.Score}, nil
}

// DeleteLead removes a lead and its interaction history.
func (s *LeadService) DeleteLead(leadID uint) error {
	var lead models.Lead
	if err := s.DB.First(&lead, leadID).Error; err != nil {
		return err
	}
	if err := s.DB.Where("lead_id = ?", leadID).Delete(&models.LeadInteraction{}).Error; err != nil {
		return err
	}
	return s.DB.Delete(&lead).Error
}

// LeadFilter narrows ListLeads.
type LeadFilter struct {
	Status   string
	Sector   string
	MinScore int
	Page     int
	PerPage  int
}

// ListLeads returns leads matching the filter, best score first.
func (s *LeadService) ListLeads(filter LeadFilter) ([]models.Lead, int64, error) {
	query := s.DB.Model(&models.Lead{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	if filter.MinScore > 0 {
		query = query.Where("score >= ?", filter.MinScore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 20
	}

	var leads []models.Lead
	err := query.Order("score desc").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&leads).Error
	return leads, total, err
}

// QualifiedLeads returns contactable leads with score >= minScore,
// best first, capped at limit.
func (s *LeadService) QualifiedLeads(minScore, limit int) ([]models.Lead, error) {
	var leads []models.Lead
	err := s.DB.
		Where("score >= ?", minScore).
		Where("status IN ?", []string{models.LeadStatusNew, models.LeadStatusContacted}).
		Order("score desc").
		Limit(limit).
		Find(&leads).Error
	return leads, err
}

// LeadsBySector returns a sector's leads with score >= minScore.
func (s *LeadService) LeadsBySector(sector string, minScore int) ([]models.Lead, error) {
	var leads []models.Lead
	err := s.DB.
		Where("sector = ? AND score >= ?", sector, minScore).
		Order("score desc").
		Find(&leads).Error
	return leads, err
}

// FollowUpLeads returns contacted leads whose last contact is at least
// the given number of days old.
func (s *LeadService) FollowUpLeads(daysSinceContact int) ([]models.Lead, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysSinceContact)

	var leads []models.Lead
	err := s.DB.
		Where("status = ?", models.LeadStatusContacted).
		Where("last_contact_at <= ?", cutoff).
		Order("score desc").
		Find(&leads).Error
	return leads, err
}

// InteractionInput is the payload for recording an interaction.
type InteractionInput struct {
	InteractionType string                 `json:"interaction_type" binding:"required"`
	Channel         string                 `json:"channel"`
	Subject         string                 `json:"subject"`
	Message         string                 `json:"message"`
	Status          string                 `json:"status"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// InteractionResult reports the outcome of recording an interaction.
type InteractionResult struct {
	Success       bool   `json:"success"`
	InteractionID uint   `json:"interaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// RecordInteraction appends an interaction log entry, refreshes the
// lead's last_contact_at and advances status from new to contacted.
func (s *LeadService) RecordInteraction(leadID uint, input *InteractionInput) (*InteractionResult, error) {
	var lead models.Lead
	if err := s.DB.First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &InteractionResult{Success: false, Error: "lead not found"}, nil
		}
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = "sent"
	}

	interaction := models.LeadInteraction{
		LeadID:          leadID,
		InteractionType: input.InteractionType,
		Channel:         input.Channel,
		Subject:         input.Subject,
		Message:         input.Message,
		Status:          status,
	}
	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, err
		}
		interaction.Metadata = datatypes.JSON(raw)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&interaction).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"last_contact_at": time.Now().UTC()}
		if lead.Status == models.LeadStatusNew {
			updates["status"] = models.LeadStatusContacted
		}
		return tx.Model(&lead).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return &InteractionResult{Success: true, InteractionID: interaction.ID}, nil
}

// Interactions returns a lead's interaction history, newest first.
func (s *LeadService) Interactions(leadID uint) ([]models.LeadInteraction, error) {
	var interactions []models.LeadInteraction
	err := s.DB.
		Where("lead_id = ?", leadID).
		Order("sent_at desc").
		Find(&interactions).Error
	return interactions, err
}

// ImportResult aggregates a CNPJ batch import. One failed id never
// aborts the batch; its error is collected instead.
type ImportResult struct {
	Success        bool     `json:"success"`
	ImportedCount  int      `json:"imported_count"`
	TotalProcessed int      `json:"total_processed"`
	Errors         []string `json:"errors"`
}

// ImportFromCNPJ looks up each CNPJ in the public registry, maps the
// record onto the lead schema and attempts intake.
func (s *LeadService) ImportFromCNPJ(cnpjList []string, sourceName string) *ImportResult {
	result := &ImportResult{
		Success:        true,
		TotalProcessed: len(cnpjList),
		Errors:         []string{},
	}

	for _, cnpj := range cnpjList {
		record, err := s.Registry.Lookup(cnpj)
		if err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("CNPJ %s: company data not found", cnpj))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("CNPJ %s: %v", cnpj, err))
			}
			continue
		}

		lead := s.mapCompanyToLead(record, sourceName)
		created, err := s.CreateLead(lead)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("CNPJ %s: %v", cnpj, err))
			continue
		}
		if !created.Success {
			result.Errors = append(result.Errors, fmt.Sprintf("CNPJ %s: %s", cnpj, created.Error))
			continue
		}
		result.ImportedCount++
	}

	return result
}

// porteToSize translates the registry's company-size designation.
var porteToSize = map[string]string{
	"MICRO EMPRESA":            "Micro",
	"EMPRESA DE PEQUENO PORTE": "Pequena",
	"DEMAIS":                   "Média",
}

// mapCompanyToLead maps a registry record onto the lead schema.
func (s *LeadService) mapCompanyToLead(record *registry.CompanyRecord, source string) *models.Lead {
	size, ok := porteToSize[record.Porte]
	if !ok {
		size = "Não informado"
	}

	activity := ""
	if len(record.AtividadePrincipal) > 0 {
		activity = record.AtividadePrincipal[0].Text
	}

	lead := &models.Lead{
		CompanyName: record.Nome,
		CNPJ:        record.CNPJ,
		Sector:      ClassifySector(activity),
		CompanySize: size,
		Email:       record.Email,
		Phone:       record.Telefone,
		City:        record.Municipio,
		State:       record.UF,
		Address:     fmt.Sprintf("%s, %s - %s", record.Logradouro, record.Numero, record.Bairro),
		Source:      source,
	}

	extra := map[string]interface{}{
		"situacao":               record.Situacao,
		"data_situacao":          record.DataSituacao,
		"atividade_principal":    record.AtividadePrincipal,
		"atividades_secundarias": record.AtividadesSecundarias,
		"capital_social":         record.CapitalSocial,
	}
	if raw, err := json.Marshal(extra); err == nil {
		lead.AdditionalData = datatypes.JSON(raw)
	}

	return lead
}

// sectorKeywords drive the best-effort classification of the
// registry's free-text business-activity description.
var sectorKeywords = []struct {
	sector   string
	keywords []string
}{
	{"Indústria", []string{"indústria", "fabricação", "manufatura", "produção"}},
	{"Comércio", []string{"comércio", "venda", "varejo", "atacado"}},
	{"Serviços", []string{"serviços", "consultoria", "assessoria"}},
	{"Construção", []string{"construção", "obras", "engenharia"}},
	{"Tecnologia", []string{"tecnologia", "software", "informática"}},
}

// ClassifySector maps a business-activity description onto a sector.
// Unmatched descriptions land in "Outros".
func ClassifySector(activity string) string {
	lower := strings.ToLower(activity)
	for _, entry := range sectorKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.sector
			}
		}
	}
	return "Outros"
}

// LeadStatistics summarizes the lead base.
type LeadStatistics struct {
	TotalLeads     int64            `json:"total_leads"`
	NewLeads       int64            `json:"new_leads"`
	ContactedLeads int64            `json:"contacted_leads"`
	QualifiedLeads int64            `json:"qualified_leads"`
	ConversionRate float64          `json:"conversion_rate"`
	Sectors        map[string]int64 `json:"sectors"`
	Sources        map[string]int64 `json:"sources"`
}

// Statistics returns aggregate lead counts. Leads with score >= 50
// count as qualified.
func (s *LeadService) Statistics() (*LeadStatistics, error) {
	stats := &LeadStatistics{
		Sectors: map[string]int64{},
		Sources: map[string]int64{},
	}

	if err := s.DB.Model(&models.Lead{}).Count(&stats.TotalLeads).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Lead{}).Where("status = ?", models.LeadStatusNew).Count(&stats.NewLeads).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Lead{}).Where("status = ?", models.LeadStatusContacted).Count(&stats.ContactedLeads).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Lead{}).Where("score >= ?", 50).Count(&stats.QualifiedLeads).Error; err != nil {
		return nil, err
	}

	if stats.TotalLeads > 0 {
		stats.ConversionRate = float64(stats.QualifiedLeads) / float64(stats.TotalLeads) * 100
	}

	type groupCount struct {
		Key   string
		Count int64
	}
	var bySector []groupCount
	if err := s.DB.Model(&models.Lead{}).
		Select("sector as key, count(id) as count").
		Where("sector <> ''").
		Group("sector").
		Scan(&bySector).Error; err != nil {
		return nil, err
	}
	for _, g := range bySector {
		stats.Sectors[g.Key] = g.Count
	}

	var bySource []groupCount
	if err := s.DB.Model(&models.Lead{}).
		Select("source as key, count(id) as count").
		Where("source <> ''").
		Group("source").
		Scan(&bySource).Error; err != nil {
		return nil, err
	}
	for _, g := range bySource {
		stats.Sources[g.Key] = g.Count
	}

	return stats, nil
}
