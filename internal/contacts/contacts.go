// Package contacts manages Beem address books and the contacts in them.
package contacts

import (
	"context"
	"net/url"
	"strings"

	"github.com/beemafrica/beem-go/internal/apiclient"
	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/payload"
	"github.com/beemafrica/beem-go/internal/phone"
)

const (
	addressBooksPath = "/public/v1/address-books"
	contactsPath     = "/public/v1/contacts"
)

type AddressBook struct {
	ID            string
	Name          string
	Description   string
	ContactsCount int
	Created       string
}

func AddressBookFromMap(m map[string]any) AddressBook {
	return AddressBook{
		ID:            payload.String(m, "id"),
		Name:          payload.String(m, "addressbook"),
		Description:   payload.String(m, "description"),
		ContactsCount: payload.Int(m, "contacts_count"),
		Created:       payload.String(m, "created"),
	}
}

type AddressBookRequest struct {
	Name        string
	Description string
}

func (r AddressBookRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apierr.Invalidf("address book name is required")
	}
	return nil
}

func (r AddressBookRequest) Payload() map[string]any {
	return map[string]any{"addressbook": r.Name, "description": r.Description}
}

type Contact struct {
	ID        string
	MobNo     string
	MobNo2    string
	Title     string
	FirstName string
	LastName  string
	Gender    string
	Email     string
	Country   string
	City      string
	Area      string
	BirthDate string
}

func ContactFromMap(m map[string]any) Contact {
	return Contact{
		ID:        payload.String(m, "id"),
		MobNo:     payload.String(m, "mob_no"),
		MobNo2:    payload.String(m, "mob_no2"),
		Title:     payload.String(m, "title"),
		FirstName: payload.String(m, "fname"),
		LastName:  payload.String(m, "lname"),
		Gender:    payload.String(m, "gender"),
		Email:     payload.String(m, "email"),
		Country:   payload.String(m, "country"),
		City:      payload.String(m, "city"),
		Area:      payload.String(m, "area"),
		BirthDate: payload.String(m, "birth_date"),
	}
}

// ContactRequest creates or updates a contact in one or more address books.
type ContactRequest struct {
	AddressBookIDs []string
	MobNo          string
	MobNo2         string
	Title          string
	FirstName      string
	LastName       string
	Gender         string
	Email          string
	Country        string
	City           string
	Area           string
	BirthDate      string // YYYY-MM-DD
}

func (r ContactRequest) Validate() error {
	if len(r.AddressBookIDs) == 0 {
		return apierr.Invalidf("at least one address book id is required")
	}
	if strings.TrimSpace(r.MobNo) == "" {
		return apierr.Invalidf("mobile number is required")
	}
	return nil
}

// Payload omits empty optional fields.
func (r ContactRequest) Payload() map[string]any {
	p := map[string]any{
		"addressbook_id": r.AddressBookIDs,
		"mob_no":         r.MobNo,
	}
	for k, v := range map[string]string{
		"mob_no2":    r.MobNo2,
		"title":      r.Title,
		"fname":      r.FirstName,
		"lname":      r.LastName,
		"gender":     r.Gender,
		"email":      r.Email,
		"country":    r.Country,
		"city":       r.City,
		"area":       r.Area,
		"birth_date": r.BirthDate,
	} {
		if v != "" {
			p[k] = v
		}
	}
	return p
}

// Ack is the reply to a create, update or delete.
type Ack struct {
	ID      string
	Message string
}

func AckFromMap(m map[string]any) Ack {
	d := payload.Data(m)
	msg := payload.String(d, "message")
	if msg == "" {
		msg = payload.String(m, "message")
	}
	return Ack{ID: payload.String(d, "id"), Message: msg}
}

// Config holds contacts settings.
type Config struct {
	Region string
}

type Service struct {
	api *apiclient.Client
	cfg Config
}

func NewService(api *apiclient.Client, cfg Config) *Service {
	return &Service{api: api, cfg: cfg}
}

func (s *Service) list(ctx context.Context, path string, query url.Values) ([]map[string]any, error) {
	resp, err := s.api.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	v, err := resp.ExpectValue(apierr.Contacts)
	if err != nil {
		return nil, err
	}
	return payload.UnwrapList(v), nil
}

func (s *Service) ack(resp *apiclient.Response, err error) (*Ack, error) {
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.Contacts)
	if err != nil {
		return nil, err
	}
	a := AckFromMap(m)
	return &a, nil
}

// AddressBooks lists address books, filtered by q when non-empty.
func (s *Service) AddressBooks(ctx context.Context, q string) ([]AddressBook, error) {
	query := url.Values{}
	if q != "" {
		query.Set("q", q)
	}
	items, err := s.list(ctx, addressBooksPath, query)
	if err != nil {
		return nil, err
	}
	books := make([]AddressBook, 0, len(items))
	for _, m := range items {
		books = append(books, AddressBookFromMap(m))
	}
	return books, nil
}

func (s *Service) CreateAddressBook(ctx context.Context, req AddressBookRequest) (*Ack, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.ack(s.api.Post(ctx, addressBooksPath, req.Payload()))
}

func (s *Service) UpdateAddressBook(ctx context.Context, id string, req AddressBookRequest) (*Ack, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierr.Invalidf("address book id is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.ack(s.api.Put(ctx, addressBooksPath+"/"+url.PathEscape(id), req.Payload()))
}

func (s *Service) DeleteAddressBook(ctx context.Context, id string) (*Ack, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierr.Invalidf("address book id is required")
	}
	return s.ack(s.api.Delete(ctx, addressBooksPath+"/"+url.PathEscape(id), nil))
}

// Contacts lists the contacts in one address book, filtered by q when
// non-empty.
func (s *Service) Contacts(ctx context.Context, addressBookID, q string) ([]Contact, error) {
	if strings.TrimSpace(addressBookID) == "" {
		return nil, apierr.Invalidf("address book id is required")
	}
	query := url.Values{"addressbook_id": {addressBookID}}
	if q != "" {
		query.Set("q", q)
	}
	items, err := s.list(ctx, contactsPath, query)
	if err != nil {
		return nil, err
	}
	contacts := make([]Contact, 0, len(items))
	for _, m := range items {
		contacts = append(contacts, ContactFromMap(m))
	}
	return contacts, nil
}

func (s *Service) normalize(req ContactRequest) (ContactRequest, error) {
	if err := req.Validate(); err != nil {
		return req, err
	}
	mob, err := phone.NormalizeMSISDN(req.MobNo, s.cfg.Region)
	if err != nil {
		return req, apierr.Invalidf("mobile number %q: %v", req.MobNo, err)
	}
	req.MobNo = mob
	if req.MobNo2 != "" {
		mob2, err := phone.NormalizeMSISDN(req.MobNo2, s.cfg.Region)
		if err != nil {
			return req, apierr.Invalidf("second mobile number %q: %v", req.MobNo2, err)
		}
		req.MobNo2 = mob2
	}
	return req, nil
}

func (s *Service) CreateContact(ctx context.Context, req ContactRequest) (*Ack, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	return s.ack(s.api.Post(ctx, contactsPath, req.Payload()))
}

func (s *Service) UpdateContact(ctx context.Context, id string, req ContactRequest) (*Ack, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierr.Invalidf("contact id is required")
	}
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	return s.ack(s.api.Put(ctx, contactsPath+"/"+url.PathEscape(id), req.Payload()))
}

// DeleteContacts removes contactIDs from the given address books.
func (s *Service) DeleteContacts(ctx context.Context, addressBookIDs, contactIDs []string) (*Ack, error) {
	if len(addressBookIDs) == 0 {
		return nil, apierr.Invalidf("at least one address book id is required")
	}
	if len(contactIDs) == 0 {
		return nil, apierr.Invalidf("at least one contact id is required")
	}
	body := map[string]any{"addressbook_id": addressBookIDs, "contacts_id": contactIDs}
	return s.ack(s.api.Delete(ctx, contactsPath, body))
}
