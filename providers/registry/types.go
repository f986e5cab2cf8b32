package registry

// Activity is one business-activity entry in a registry reply.
type Activity struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// CompanyRecord is the JSON reply of a ReceitaWS-style CNPJ lookup.
// Status is "OK" on success; anything else means not found or rejected.
type CompanyRecord struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`

	Nome          string `json:"nome"`
	Fantasia      string `json:"fantasia,omitempty"`
	CNPJ          string `json:"cnpj"`
	Porte         string `json:"porte"`
	Email         string `json:"email,omitempty"`
	Telefone      string `json:"telefone,omitempty"`
	Logradouro    string `json:"logradouro,omitempty"`
	Numero        string `json:"numero,omitempty"`
	Bairro        string `json:"bairro,omitempty"`
	Municipio     string `json:"municipio,omitempty"`
	UF            string `json:"uf,omitempty"`
	Situacao      string `json:"situacao,omitempty"`
	DataSituacao  string `json:"data_situacao,omitempty"`
	CapitalSocial string `json:"capital_social,omitempty"`

	AtividadePrincipal    []Activity `json:"atividade_principal,omitempty"`
	AtividadesSecundarias []Activity `json:"atividades_secundarias,omitempty"`
}
