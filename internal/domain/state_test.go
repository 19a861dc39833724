package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseStateDefaultsMissingFieldsIndependently(t *testing.T) {
	body := []byte(`{"tables":[{"id":9,"name":"Patio","seats":3,"status":"free"}],"menu":"oops","orders":null}`)
	got, err := ParseState(body)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	wantTables := []Table{{ID: 9, Name: "Patio", Seats: 3, Status: TableFree}}
	if !reflect.DeepEqual(got.Tables, wantTables) {
		t.Errorf("tables = %+v, want %+v", got.Tables, wantTables)
	}
	def := DefaultState()
	if !reflect.DeepEqual(got.Menu, def.Menu) {
		t.Errorf("menu should fall back to default, got %+v", got.Menu)
	}
	if !reflect.DeepEqual(got.Orders, def.Orders) {
		t.Errorf("orders should fall back to default, got %+v", got.Orders)
	}
	if !reflect.DeepEqual(got.Staff, def.Staff) {
		t.Errorf("staff should fall back to default, got %+v", got.Staff)
	}
}

func TestParseStateKeepsEmptyArrays(t *testing.T) {
	got, err := ParseState([]byte(`{"tables":[],"menu":[],"orders":[],"staff":[]}`))
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	if got.Tables == nil || len(got.Tables) != 0 || len(got.Menu) != 0 || len(got.Orders) != 0 || len(got.Staff) != 0 {
		t.Fatalf("empty arrays must be preserved, got %+v", got)
	}
}

func TestParseStateCoercesQuotedScalars(t *testing.T) {
	body := []byte(`{"tables":[
		{"id":1,"name":"T1","seats":4,"status":"free"},
		{"id":"2","name":"T2","seats":" 6 ","status":"free"},
		{"id":3,"name":"3","seats":2,"status":"free"}
	],"menu":[{"id":1,"name":"Tea","category":"Drinks","price":"2.5","available":"true"}]}`)
	got, err := ParseState(body)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	wantTables := []Table{
		{ID: 1, Name: "T1", Seats: 4, Status: TableFree},
		{ID: 2, Name: "T2", Seats: 6, Status: TableFree},
		{ID: 3, Name: "3", Seats: 2, Status: TableFree},
	}
	if !reflect.DeepEqual(got.Tables, wantTables) {
		t.Errorf("tables = %+v, want %+v", got.Tables, wantTables)
	}
	wantMenu := []MenuItem{{ID: 1, Name: "Tea", Category: "Drinks", Price: 2.5, Available: true}}
	if !reflect.DeepEqual(got.Menu, wantMenu) {
		t.Errorf("menu = %+v, want %+v", got.Menu, wantMenu)
	}
}

func TestParseStateRejectsBadElements(t *testing.T) {
	cases := map[string]struct {
		field string
		index int
	}{
		`{"orders":[{"id":1},{"id":"not-a-number"}]}`:    {"orders", 1},
		`{"tables":["T1"]}`:                              {"tables", 0},
		`{"staff":[{"id":1},{"id":2},{"id":[3]}]}`:       {"staff", 2},
		`{"orders":[{"id":1,"items":[{"qty":"many"}]}]}`: {"orders", 0},
		`{"menu":[{"id":1,"price":"NaN"}]}`:              {"menu", 0},
	}
	for body, want := range cases {
		_, err := ParseState([]byte(body))
		var elemErr *ElementError
		if !errors.As(err, &elemErr) {
			t.Errorf("ParseState(%s) err = %v, want ElementError", body, err)
			continue
		}
		if elemErr.Field != want.field || elemErr.Index != want.index {
			t.Errorf("ParseState(%s) = %s[%d], want %s[%d]", body, elemErr.Field, elemErr.Index, want.field, want.index)
		}
	}
}

func TestParseStateNonObjectAndEmpty(t *testing.T) {
	for _, body := range []string{``, `   `, `[]`, `"text"`, `42`, `null`} {
		got, err := ParseState([]byte(body))
		if err != nil {
			t.Fatalf("ParseState(%q): %v", body, err)
		}
		if !reflect.DeepEqual(got, DefaultState()) {
			t.Errorf("ParseState(%q) should return defaults", body)
		}
	}
}

func TestParseStateInvalidJSON(t *testing.T) {
	if _, err := ParseState([]byte(`{"tables": [`)); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestParseStateRoundTrip(t *testing.T) {
	state := DefaultState()
	state.Orders[0].Status = OrderPaid
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseState(data)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	if !reflect.DeepEqual(got, state) {
		t.Errorf("round trip changed state:\n got %+v\nwant %+v", got, state)
	}
}

func TestDefaultStateIsFreshCopy(t *testing.T) {
	a := DefaultState()
	a.Tables[0].Name = "changed"
	if DefaultState().Tables[0].Name != "T1" {
		t.Fatal("DefaultState must not share slices between calls")
	}
}

func TestNormalizedFillsNilFields(t *testing.T) {
	s := AppState{Tables: []Table{}, Orders: []Order{{ID: 5}}}.Normalized()
	if len(s.Tables) != 0 {
		t.Errorf("empty tables must stay empty")
	}
	if len(s.Menu) != len(DefaultState().Menu) || len(s.Staff) != len(DefaultState().Staff) {
		t.Errorf("nil fields must be defaulted")
	}
	if s.Orders[0].Items == nil {
		t.Errorf("nil order items must become an empty list")
	}
	if s.FindOrder(5) != 0 || s.FindOrder(6) != -1 {
		t.Errorf("FindOrder mismatch")
	}
}
