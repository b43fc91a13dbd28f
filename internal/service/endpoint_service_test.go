package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantMsg string
	}{
		{"7", 7, ""},
		{" 12 ", 12, ""},
		{"", 0, "endpoint_id required"},
		{"   ", 0, "endpoint_id required"},
		{"abc", 0, "invalid endpoint_id"},
		{"1.5", 0, "invalid endpoint_id"},
	}
	for _, tt := range tests {
		id, err := ParseID(tt.raw)
		if tt.wantMsg == "" {
			require.NoError(t, err, tt.raw)
			assert.Equal(t, tt.want, id)
			continue
		}
		assert.ErrorIs(t, err, ErrValidation, tt.raw)
		assert.Equal(t, tt.wantMsg, PublicMessage(err))
	}
}

func TestEndpointService_CreateAndResolve(t *testing.T) {
	store := newTestStore(t)
	svc := NewEndpointService(store.Endpoints)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateEndpointInput{
		Name:                 "OpenAI",
		BaseURL:              "https://api.openai.com/",
		APIKey:               "sk-abc",
		CostPerMillionInput:  2.5,
		CostPerMillionOutput: 10.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "sk-abc", created.APIKey)

	ep, err := svc.Resolve(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.5, ep.CostPerMillionInput)
	assert.Equal(t, 10.0, ep.CostPerMillionOutput)
	assert.Equal(t, "https://api.openai.com/", ep.BaseURL)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sk-abc", list[0].APIKey)

	_, err = svc.Resolve(ctx, created.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "endpoint not found", PublicMessage(err))

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Resolve(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEndpointService_CreateValidation(t *testing.T) {
	store := newTestStore(t)
	svc := NewEndpointService(store.Endpoints)
	ctx := context.Background()

	for _, in := range []CreateEndpointInput{
		{Name: "", BaseURL: "http://x"},
		{Name: "x", BaseURL: "  "},
	} {
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "name and base_url required", PublicMessage(err))
	}

	_, err := svc.Create(ctx, CreateEndpointInput{Name: "x", BaseURL: "http://x", CostPerMillionInput: -1})
	assert.ErrorIs(t, err, ErrValidation)

	// api_key 可以为空
	ep, err := svc.Create(ctx, CreateEndpointInput{Name: "local", BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.Equal(t, "", ep.APIKey)
}
