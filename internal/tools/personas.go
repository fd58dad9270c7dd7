// ABOUTME: Persona tools: generation, listing, retrieval, deletion, questioning
// ABOUTME: Backed by the /v1/personas REST routes

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/schema"
)

func personaTools(client *backend.Client) []*Tool {
	h := &personaHandlers{client: client}
	return []*Tool{
		{
			Name:        "generate_personas",
			Description: "Generate research personas from a brief describing who to study",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "brief", Type: schema.String, Required: true, Description: "Who to research and why"},
				{Name: "count", Type: schema.Integer, Min: schema.Int(1), Max: schema.Int(20), Default: []byte("5"), Description: "How many personas to generate"},
				{Name: "audience_id", Type: schema.String, Format: schema.FormatUUID, Description: "Constrain generation to an existing audience"},
				{Name: "region", Type: schema.String, Description: "Geographic focus, free-form"},
				{Name: "language", Type: schema.String, Format: schema.FormatLanguage, Description: "Two-letter ISO 639-1 language code"},
			}},
			Handler: h.generate,
		},
		{
			Name:        "list_personas",
			Description: "List generated personas, optionally filtered by audience",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "audience_id", Type: schema.String, Format: schema.FormatUUID, Description: "Only personas in this audience"},
				{Name: "limit", Type: schema.Integer, Min: schema.Int(1), Max: schema.Int(100), Default: []byte("20")},
				{Name: "offset", Type: schema.Integer, Min: schema.Int(0), Default: []byte("0")},
			}},
			Handler: h.list,
		},
		{
			Name:        "get_persona",
			Description: "Get one persona with its full profile",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "persona_id", Type: schema.String, Required: true, Format: schema.FormatUUID},
			}},
			Handler: h.get,
		},
		{
			Name:        "delete_persona",
			Description: "Delete a persona permanently",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "persona_id", Type: schema.String, Required: true, Format: schema.FormatUUID},
			}},
			Handler: h.delete,
		},
		{
			Name:        "ask_persona",
			Description: "Ask one persona a question and get an in-character answer",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "persona_id", Type: schema.String, Required: true, Format: schema.FormatUUID},
				{Name: "question", Type: schema.String, Required: true, Description: "The question to pose"},
				{Name: "context", Type: schema.String, Description: "Extra situation framing for the persona"},
			}},
			Handler: h.ask,
		},
	}
}

type personaHandlers struct {
	client *backend.Client
}

type generatePersonasInput struct {
	Brief      string `json:"brief"`
	Count      int    `json:"count"`
	AudienceID string `json:"audience_id"`
	Region     string `json:"region"`
	Language   string `json:"language"`
}

func (h *personaHandlers) generate(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in generatePersonasInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.GeneratePersonas(ctx, creds, backend.GeneratePersonasRequest{
		Brief:      in.Brief,
		Count:      in.Count,
		AudienceID: in.AudienceID,
		Region:     in.Region,
		Language:   in.Language,
	})
}

type listPersonasInput struct {
	AudienceID string `json:"audience_id"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

func (h *personaHandlers) list(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in listPersonasInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.ListPersonas(ctx, creds, backend.ListPersonasParams{
		AudienceID: in.AudienceID,
		ListParams: backend.ListParams{Limit: in.Limit, Offset: in.Offset},
	})
}

type personaIDInput struct {
	PersonaID string `json:"persona_id"`
}

func (h *personaHandlers) get(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in personaIDInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.GetPersona(ctx, creds, in.PersonaID)
}

func (h *personaHandlers) delete(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in personaIDInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.DeletePersona(ctx, creds, in.PersonaID)
}

type askPersonaInput struct {
	PersonaID string `json:"persona_id"`
	Question  string `json:"question"`
	Context   string `json:"context"`
}

func (h *personaHandlers) ask(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in askPersonaInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.AskPersona(ctx, creds, in.PersonaID, backend.AskPersonaRequest{
		Question: in.Question,
		Context:  in.Context,
	})
}
