package domain

import (
	"bytes"         // Whitespace trimming for empty bodies
	"encoding/json" // JSON decoding of the state document
	"errors"        // Error inspection
	"fmt"           // Error messages
	"strconv"       // Numeric string checks
	"strings"       // Trimming quoted values
	"time"          // Update timestamps
)

// Table statuses
const (
	TableFree     = "free"
	TableOccupied = "occupied"
	TableReserved = "reserved"
)

// Order statuses, monotonic in practice: preparing -> served -> paid
const (
	OrderPreparing = "preparing"
	OrderServed    = "served"
	OrderPaid      = "paid"
)

// Staff statuses
const (
	StaffActive = "active"
	StaffOff    = "off"
)

// Table is a dining table on the floor
type Table struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Seats  int    `json:"seats"`
	Status string `json:"status"`
}

// MenuItem is a dish that can be ordered
type MenuItem struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// OrderItem references a menu item and a quantity
type OrderItem struct {
	MenuID int64 `json:"menuId"`
	Qty    int   `json:"qty"`
}

// Order is a table's order. Total is pre-tax and frozen when the order is created.
type Order struct {
	ID           int64       `json:"id"`
	TableID      int64       `json:"tableId"`
	CustomerName string      `json:"customerName"`
	Items        []OrderItem `json:"items"`
	Status       string      `json:"status"`
	Time         string      `json:"time"`
	Total        float64     `json:"total"`
}

// StaffMember is an entry on the staff roster (not a login account)
type StaffMember struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Shift  string `json:"shift"`
	Status string `json:"status"`
}

// AppState is the single shared document holding the restaurant's operational state
type AppState struct {
	Tables []Table       `json:"tables"`
	Menu   []MenuItem    `json:"menu"`
	Orders []Order       `json:"orders"`
	Staff  []StaffMember `json:"staff"`
}

// StateRecord Model, the persisted singleton row
type StateRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false"` // Always StateRecordID
	Data      string    `gorm:"not null"`                       // JSON encoded AppState
	Version   int64     `gorm:"not null;default:0"`             // Bumped on every write
	UpdatedAt time.Time                                         // Stamped on every write
}

// StateRecordID is the fixed key of the singleton row
const StateRecordID = 1

// TableName keeps the table name used by earlier deployments
func (StateRecord) TableName() string { return "app_state" }

// DefaultState returns a fresh copy of the seed document
func DefaultState() AppState {
	return AppState{
		Tables: defaultTables(),
		Menu:   defaultMenu(),
		Orders: defaultOrders(),
		Staff:  defaultStaff(),
	}
}

func defaultTables() []Table {
	return []Table{
		{ID: 1, Name: "T1", Seats: 2, Status: TableFree},
		{ID: 2, Name: "T2", Seats: 4, Status: TableOccupied},
		{ID: 3, Name: "T3", Seats: 4, Status: TableFree},
		{ID: 4, Name: "T4", Seats: 6, Status: TableReserved},
		{ID: 5, Name: "T5", Seats: 2, Status: TableFree},
		{ID: 6, Name: "T6", Seats: 8, Status: TableOccupied},
		{ID: 7, Name: "T7", Seats: 4, Status: TableFree},
		{ID: 8, Name: "T8", Seats: 6, Status: TableFree},
	}
}

func defaultMenu() []MenuItem {
	return []MenuItem{
		{ID: 1, Name: "Butter Chicken", Category: "Main Course", Price: 320, Available: true},
		{ID: 2, Name: "Paneer Tikka", Category: "Starter", Price: 220, Available: true},
		{ID: 3, Name: "Dal Makhani", Category: "Main Course", Price: 180, Available: true},
		{ID: 4, Name: "Garlic Naan", Category: "Bread", Price: 60, Available: true},
		{ID: 5, Name: "Mango Lassi", Category: "Drinks", Price: 90, Available: true},
		{ID: 6, Name: "Gulab Jamun", Category: "Dessert", Price: 120, Available: true},
		{ID: 7, Name: "Chicken Biryani", Category: "Main Course", Price: 380, Available: true},
		{ID: 8, Name: "Veg Soup", Category: "Starter", Price: 140, Available: false},
	}
}

func defaultOrders() []Order {
	return []Order{
		{ID: 1001, TableID: 2, CustomerName: "Walk-in Guest", Items: []OrderItem{{MenuID: 1, Qty: 2}, {MenuID: 4, Qty: 3}}, Status: OrderServed, Time: "12:30 PM", Total: 820},
		{ID: 1002, TableID: 6, CustomerName: "Rohit", Items: []OrderItem{{MenuID: 7, Qty: 1}, {MenuID: 5, Qty: 2}}, Status: OrderPreparing, Time: "1:05 PM", Total: 560},
	}
}

func defaultStaff() []StaffMember {
	return []StaffMember{
		{ID: 1, Name: "Rahul Sharma", Role: "Waiter", Shift: "Morning", Status: StaffActive},
		{ID: 2, Name: "Priya Verma", Role: "Chef", Shift: "Morning", Status: StaffActive},
		{ID: 3, Name: "Amit Kumar", Role: "Manager", Shift: "Full Day", Status: StaffActive},
		{ID: 4, Name: "Sunita Devi", Role: "Cashier", Shift: "Evening", Status: StaffOff},
	}
}

// ElementError reports an array element that does not fit its entity
type ElementError struct {
	Field string // Top-level field, e.g. "tables"
	Index int    // Position in the array
	Err   error  // Decoding failure
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Field, e.Index, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// ParseState decodes a possibly partial state document.
// Each top-level field that is missing, null or not an array falls back to its
// seed default on its own; arrays are kept as sent. Quoted numbers and booleans
// inside elements are accepted in place of the bare values. The error is a
// syntax error for invalid JSON, or an *ElementError for an element that still
// does not fit.
func ParseState(data []byte) (AppState, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return DefaultState(), nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Valid JSON that is not an object (array, string, number)
			return DefaultState(), nil
		}
		return AppState{}, err
	}
	var (
		st  AppState
		err error
	)
	if st.Tables, err = decodeField("tables", fields["tables"], defaultTables); err != nil {
		return AppState{}, err
	}
	if st.Menu, err = decodeField("menu", fields["menu"], defaultMenu); err != nil {
		return AppState{}, err
	}
	if st.Orders, err = decodeField("orders", fields["orders"], defaultOrders); err != nil {
		return AppState{}, err
	}
	if st.Staff, err = decodeField("staff", fields["staff"], defaultStaff); err != nil {
		return AppState{}, err
	}
	return st, nil
}

func decodeField[T any](name string, raw json.RawMessage, fallback func() []T) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return fallback(), nil // Missing, null or not an array
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &ElementError{Field: name, Index: 0, Err: err}
	}
	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		v, err := decodeElement[T](elem)
		if err != nil {
			return nil, &ElementError{Field: name, Index: i, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

const maxCoercions = 8 // Quoted values fixed per element before giving up

// decodeElement unmarshals elem into T, unquoting fields where a string holds a number or boolean
func decodeElement[T any](elem json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(elem, &v)
	for i := 0; err != nil && i < maxCoercions; i++ {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Value != "string" {
			break
		}
		fixed, ok := unquoteField(elem, typeErr.Field)
		if !ok {
			break
		}
		elem = fixed
		v = *new(T)
		err = json.Unmarshal(elem, &v)
	}
	return v, err
}

// unquoteField replaces the string value of key with its bare literal when it is a number or boolean
func unquoteField(elem json.RawMessage, key string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(elem, &obj); err != nil {
		return nil, false
	}
	var text string
	if err := json.Unmarshal(obj[key], &text); err != nil {
		return nil, false // Key missing or not a string
	}
	text = strings.TrimSpace(text)
	if _, err := strconv.ParseFloat(text, 64); err != nil && text != "true" && text != "false" {
		return nil, false
	}
	obj[key] = json.RawMessage(text)
	out, err := json.Marshal(obj) // Fails on literals JSON does not allow, like NaN
	if err != nil {
		return nil, false
	}
	return out, true
}

// Normalized fills every nil field with its seed default
func (s AppState) Normalized() AppState {
	if s.Tables == nil {
		s.Tables = defaultTables()
	}
	if s.Menu == nil {
		s.Menu = defaultMenu()
	}
	if s.Orders == nil {
		s.Orders = defaultOrders()
	}
	if s.Staff == nil {
		s.Staff = defaultStaff()
	}
	for i := range s.Orders {
		if s.Orders[i].Items == nil {
			s.Orders[i].Items = []OrderItem{}
		}
	}
	return s
}

// FindOrder returns the index of the order with the given id, or -1
func (s *AppState) FindOrder(id int64) int {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return i
		}
	}
	return -1
}
