package catalog

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// Category 商品分类
type Category struct {
	ID          uint
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate 校验分类
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" || utf8.RuneCountInString(c.Name) > 100 {
		return ErrInvalidName
	}
	return nil
}

// Supplier 供应商
type Supplier struct {
	ID           uint
	Name         string
	ContactEmail string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate 校验供应商
func (s *Supplier) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" || utf8.RuneCountInString(s.Name) > 200 {
		return ErrInvalidName
	}
	if s.ContactEmail != "" {
		if _, err := mail.ParseAddress(s.ContactEmail); err != nil {
			return ErrInvalidContactEmail
		}
	}
	return nil
}
