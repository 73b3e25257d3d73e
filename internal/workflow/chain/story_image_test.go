package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wfmodel "fairybook-api/internal/workflow/model"
	workflowport "fairybook-api/internal/workflow/port"
	apperrors "fairybook-api/pkg/errors"
)

type fakeImages struct {
	results []*workflowport.Image
	errs    []error
	calls   int
	reqs    []workflowport.ImageRequest
}

func (f *fakeImages) Generate(_ context.Context, req workflowport.ImageRequest) (*workflowport.Image, error) {
	i := f.calls
	f.calls++
	f.reqs = append(f.reqs, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return nil, nil
}

func TestImageGenerateDefaultsMime(t *testing.T) {
	g := &fakeImages{results: []*workflowport.Image{{Data: []byte("png")}}}
	c := NewStoryImageChain(g, nil, fastPolicy())

	img, err := c.Generate(context.Background(), wfmodel.ImageCover, workflowport.ImageRequest{Prompt: "p", Reference: []byte("ref")})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, []byte("ref"), g.reqs[0].Reference)
}

func TestImageGenerateRetriesEmpty(t *testing.T) {
	g := &fakeImages{
		errs:    []error{errors.New("boom"), nil, nil},
		results: []*workflowport.Image{nil, {}, {Data: []byte("x"), MIMEType: "image/jpeg"}},
	}
	c := NewStoryImageChain(g, nil, fastPolicy())
	img, err := c.Generate(context.Background(), wfmodel.ImageStage, workflowport.ImageRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, 3, g.calls)
}

func TestImageGenerateExhausted(t *testing.T) {
	g := &fakeImages{}
	c := NewStoryImageChain(g, nil, fastPolicy())
	_, err := c.Generate(context.Background(), wfmodel.ImageCharacter, workflowport.ImageRequest{Prompt: "p"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeGenerationFailed))
	assert.Equal(t, 3, g.calls)
}

func TestImagePromptRendersStyle(t *testing.T) {
	c := NewStoryImageChain(&fakeImages{}, nil, fastPolicy())
	text, err := c.Prompt(context.Background(), wfmodel.ImagePromptInput{Kind: wfmodel.ImageCharacter, StyleName: "Ink", StyleText: "bold"})
	require.NoError(t, err)
	assert.Contains(t, text, "in the style of Ink")
	assert.Contains(t, text, "character sheet")
}
