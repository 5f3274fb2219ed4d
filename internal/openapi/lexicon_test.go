package openapi

import (
	"context"
	"reflect"
	"testing"

	"github.com/wadling/wadling/internal/lexicon"
)

const petstore = `openapi: 3.0.0
info:
  title: Petstore
  version: "1.0.0"
paths:
  /pets:
    parameters:
      - in: query
        name: limit
        schema:
          type: integer
      - in: query
        name: since
        schema:
          type: string
          format: date
    get:
      operationId: listPets
      summary: List pets
      tags: [read, animal]
      parameters:
        - in: query
          name: limit
          required: true
          schema:
            type: integer
        - in: header
          name: X-Trace
          schema:
            type: string
        - in: query
          name: ratio
          schema:
            type: number
            format: float
            default: 0.5
      responses:
        "200":
          description: ok
    post:
      operationId: createPet
      description: Create a pet
      tags: [write]
      responses:
        "201":
          description: created
  /pets/{petId}:
    get:
      summary: Show pet
      tags: [read]
      parameters:
        - in: path
          name: petId
          required: true
          schema:
            type: string
        - in: query
          name: fields
          schema:
            type: array
            items:
              type: string
              format: uri
      responses:
        "200":
          description: ok
`

func loadPetstore(t *testing.T) lexicon.Map {
	t.Helper()
	doc, err := LoadData(context.Background(), []byte(petstore), "petstore.yaml", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m, err := ToLexicon(doc)
	if err != nil {
		t.Fatalf("to lexicon: %v", err)
	}
	return m
}

func TestToLexicon_OperationsInPathOrder(t *testing.T) {
	t.Parallel()
	m := loadPetstore(t)
	want := []any{"/pets", "/pets", "/pets/{petId}"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys: want %v got %v", want, got)
	}

	res, err := lexicon.ParseMap(m)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res[0].Method != lexicon.GET || res[1].Method != lexicon.POST || res[2].Method != lexicon.GET {
		t.Fatalf("unexpected methods: %s %s %s", res[0].Method, res[1].Method, res[2].Method)
	}
	if res[0].ID != "listPets" || res[1].ID != "createPet" || res[2].ID != "getPetsPetId" {
		t.Fatalf("unexpected ids: %s %s %s", res[0].ID, res[1].ID, res[2].ID)
	}
	if res[0].Doc != "List pets" || res[1].Doc != "Create a pet" {
		t.Fatalf("unexpected docs: %q %q", res[0].Doc, res[1].Doc)
	}
}

func TestToLexicon_QueryParameters(t *testing.T) {
	t.Parallel()
	res, err := lexicon.ParseMap(loadPetstore(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	list := res[0].Params
	if len(list) != 3 {
		t.Fatalf("expected limit, since and ratio, got %+v", list)
	}
	if list[0].Name != "limit" || list[0].Required != "true" || list[0].Type != lexicon.TypeInteger {
		t.Fatalf("operation parameter should replace path-level limit: %+v", list[0])
	}
	if list[1].Name != "since" || list[1].Type != lexicon.TypeDate || list[1].Required != "false" {
		t.Fatalf("unexpected since: %+v", list[1])
	}
	if list[2].Name != "ratio" || list[2].Type != lexicon.TypeFloat || list[2].Default == nil || *list[2].Default != "0.5" {
		t.Fatalf("unexpected ratio: %+v", list[2])
	}

	if len(res[1].Params) != 2 {
		t.Fatalf("post should inherit path-level query params, got %+v", res[1].Params)
	}

	show := res[2].Params
	if len(show) != 1 || show[0].Name != "fields" || show[0].Type != lexicon.TypeAnyURI {
		t.Fatalf("path params must be skipped and arrays use item types: %+v", show)
	}
}

func TestToLexicon_TagFilters(t *testing.T) {
	t.Parallel()
	doc, err := LoadData(context.Background(), []byte(petstore), "petstore.yaml", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	m, err := ToLexicon(doc, WithIncludeTags([]string{"read"}), WithExcludeTags([]string{"animal"}))
	if err != nil {
		t.Fatalf("to lexicon: %v", err)
	}
	if got := m.Keys(); !reflect.DeepEqual(got, []any{"/pets/{petId}"}) {
		t.Fatalf("expected only the show operation, got %v", got)
	}

	m, err = ToLexicon(doc, WithExcludeTags([]string{" write ", ""}))
	if err != nil {
		t.Fatalf("to lexicon: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("expected two read operations, got %d", len(m))
	}
}

func TestToLexicon_NilDocument(t *testing.T) {
	t.Parallel()
	if _, err := ToLexicon(nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

func TestDeriveOperationID(t *testing.T) {
	t.Parallel()
	cases := []struct {
		method, path, want string
	}{
		{"GET", "/pets", "getPets"},
		{"DELETE", "/pets/{petId}", "deletePetsPetId"},
		{"PUT", "/store/order-items/{id}", "putStoreOrderItemsId"},
	}
	for _, c := range cases {
		if got := deriveOperationID(c.method, c.path); got != c.want {
			t.Fatalf("%s %s: want %s got %s", c.method, c.path, c.want, got)
		}
	}
}
