package models

import (
	"errors"
	"fmt"
)

// ErrInconsistentPage метаданные страницы противоречат её содержимому.
var ErrInconsistentPage = errors.New("inconsistent address page")

// Address адрес пользователя. Complement, Unit и коды реестров
// (IBGE, GIA, DDD, SIAFI) необязательны и могут отсутствовать в ответе.
type Address struct {
	ID         string      `json:"id"`
	ZipCode    string      `json:"zipCode"`
	Street     string      `json:"street"`
	Complement *string     `json:"complement,omitempty"`
	Unit       *string     `json:"unit,omitempty"`
	District   string      `json:"district"`
	City       string      `json:"city"`
	StateAbbr  string      `json:"stateAbbr"`
	Region     string      `json:"region"`
	IBGECode   *string     `json:"ibgeCode,omitempty"`
	GIACode    *string     `json:"giaCode,omitempty"`
	AreaCode   *string     `json:"areaCode,omitempty"`
	SIAFICode  *string     `json:"siafiCode,omitempty"`
	User       UserSummary `json:"user"`
}

// AddressDraft тело запроса POST /address/create.
type AddressDraft struct {
	ZipCode    string  `json:"zipCode" validate:"required,min=8,max=9"`
	Street     string  `json:"street" validate:"required"`
	Complement *string `json:"complement,omitempty"`
	Unit       *string `json:"unit,omitempty"`
	District   string  `json:"district" validate:"required"`
	City       string  `json:"city" validate:"required"`
	StateAbbr  string  `json:"stateAbbr" validate:"required,len=2"`
	Region     string  `json:"region" validate:"required"`
	IBGECode   *string `json:"ibgeCode,omitempty"`
	GIACode    *string `json:"giaCode,omitempty"`
	AreaCode   *string `json:"areaCode,omitempty"`
	SIAFICode  *string `json:"siafiCode,omitempty"`
	UserID     string  `json:"userId"`
}

// AddressPatch тело запроса PUT /address/update: полная замена изменяемых полей по ID.
type AddressPatch struct {
	ID         string  `json:"id" validate:"required"`
	ZipCode    string  `json:"zipCode" validate:"required,min=8,max=9"`
	Street     string  `json:"street" validate:"required"`
	Complement *string `json:"complement,omitempty"`
	Unit       *string `json:"unit,omitempty"`
	District   string  `json:"district" validate:"required"`
	City       string  `json:"city" validate:"required"`
	StateAbbr  string  `json:"stateAbbr" validate:"required,len=2"`
	Region     string  `json:"region" validate:"required"`
	IBGECode   *string `json:"ibgeCode,omitempty"`
	GIACode    *string `json:"giaCode,omitempty"`
	AreaCode   *string `json:"areaCode,omitempty"`
	SIAFICode  *string `json:"siafiCode,omitempty"`
}

// Sort описание сортировки страницы.
type Sort struct {
	Empty    bool `json:"empty"`
	Sorted   bool `json:"sorted"`
	Unsorted bool `json:"unsorted"`
}

// Pageable параметры запрошенной страницы.
type Pageable struct {
	Offset     int64 `json:"offset"`
	Sort       Sort  `json:"sort"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	Paged      bool  `json:"paged"`
	Unpaged    bool  `json:"unpaged"`
}

// AddressPage страница адресов в том виде, в каком её отдаёт API.
type AddressPage struct {
	Content          []Address `json:"content"`
	Number           int       `json:"number"`
	Size             int       `json:"size"`
	TotalElements    int64     `json:"totalElements"`
	TotalPages       int       `json:"totalPages"`
	NumberOfElements int       `json:"numberOfElements"`
	Sort             Sort      `json:"sort"`
	Pageable         Pageable  `json:"pageable"`
	First            bool      `json:"first"`
	Last             bool      `json:"last"`
	Empty            bool      `json:"empty"`
}

// Validate проверяет, что len(Content) == NumberOfElements и Empty == (NumberOfElements == 0).
func (p *AddressPage) Validate() error {
	if len(p.Content) != p.NumberOfElements {
		return fmt.Errorf("%w: %d items, numberOfElements=%d", ErrInconsistentPage, len(p.Content), p.NumberOfElements)
	}
	if p.Empty != (p.NumberOfElements == 0) {
		return fmt.Errorf("%w: empty=%t, numberOfElements=%d", ErrInconsistentPage, p.Empty, p.NumberOfElements)
	}
	return nil
}

// Clone возвращает копию страницы с независимым срезом Content.
func (p *AddressPage) Clone() *AddressPage {
	if p == nil {
		return nil
	}
	c := *p
	c.Content = append([]Address(nil), p.Content...)
	return &c
}
