package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/pkg/preview"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assembledTopic = "SITE_ASSEMBLED"

func startPreviewConsumer(t *testing.T, renderer *fakeRenderer) IPublisherService {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	consumer := NewPreviewConsumerService(pubSub, assembledTopic, renderer, nopLogger())
	require.NoError(t, consumer.Consume(ctx))
	return NewPublisherService(assembledTopic, pubSub)
}

func waitRendered(t *testing.T, renderer *fakeRenderer) {
	t.Helper()
	select {
	case <-renderer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("renderer was not called")
	}
}

func TestPreviewConsumer_RendersAssembledDocument(t *testing.T) {
	renderer := &fakeRenderer{done: make(chan struct{}, 4)}
	publisher := startPreviewConsumer(t, renderer)

	payload, err := json.Marshal(dto.SiteAssembledMessage{OwnerId: 42, ProjectId: "bakery", Path: "generated/42__bakery/index.html"})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(context.Background(), payload))

	waitRendered(t, renderer)
	renderer.mu.Lock()
	defer renderer.mu.Unlock()
	assert.Equal(t, []string{"generated/42__bakery/index.html"}, renderer.paths)
}

func TestPreviewConsumer_SurvivesBadPayloadAndRendererFailure(t *testing.T) {
	renderer := &fakeRenderer{done: make(chan struct{}, 4), err: preview.ErrBrowserMissing}
	publisher := startPreviewConsumer(t, renderer)
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, []byte("not json")))

	payload, err := json.Marshal(dto.SiteAssembledMessage{Path: "a/index.html"})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, payload))
	waitRendered(t, renderer)

	renderer.mu.Lock()
	renderer.err = nil
	renderer.mu.Unlock()

	payload, err = json.Marshal(dto.SiteAssembledMessage{Path: "b/index.html"})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, payload))
	waitRendered(t, renderer)

	renderer.mu.Lock()
	defer renderer.mu.Unlock()
	assert.Equal(t, []string{"a/index.html", "b/index.html"}, renderer.paths)
}
