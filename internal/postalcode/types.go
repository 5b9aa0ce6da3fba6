package postalcode

import "github.com/magabrotheeeer/address-dashboard/internal/models"

// Result ответ ViaCEP на GET /ws/{cep}/json/
type Result struct {
	CEP        string `json:"cep"`
	Street     string `json:"logradouro"`
	Complement string `json:"complemento"`
	Unit       string `json:"unidade"`
	District   string `json:"bairro"`
	City       string `json:"localidade"`
	StateAbbr  string `json:"uf"`
	State      string `json:"estado"`
	Region     string `json:"regiao"`
	IBGECode   string `json:"ibge"`
	GIACode    string `json:"gia"`
	AreaCode   string `json:"ddd"`
	SIAFICode  string `json:"siafi"`
	NotFound   bool   `json:"erro,omitempty"`
}

// Apply заполняет черновик адреса найденными значениями.
// ZipCode и Complement не трогаются: их вводит пользователь.
func (r Result) Apply(d *models.AddressDraft) {
	d.Street = r.Street
	d.Unit = optional(r.Unit)
	d.District = r.District
	d.City = r.City
	d.StateAbbr = r.StateAbbr
	d.Region = r.Region
	d.IBGECode = optional(r.IBGECode)
	d.GIACode = optional(r.GIACode)
	d.AreaCode = optional(r.AreaCode)
	d.SIAFICode = optional(r.SIAFICode)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
