// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raddesk/raddesk-tui/internal/model"
)

func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	s, err := NewConversationStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestStoreLayoutIsSingleConversationsDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConversationStore(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "conversations"), s.BaseDir)

	// The store owns the subdirectory name; callers pass the state dir.
	_, err = os.Stat(filepath.Join(dir, "conversations", "conversations"))
	require.True(t, os.IsNotExist(err))
}

func TestConversationRoundTrip(t *testing.T) {
	s := newTestStore(t)

	conv := model.NewConversation()
	conv.AppendUserMessage("Analyze this chest X-ray for pneumonia")
	conv.AppendAgentMessage("Image Analysis Agent", "Findings: pneumonia behind left cardiac shadow")

	id, err := s.Save(conv)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	loaded, err := s.Load(id)
	require.NoError(t, err)
	require.Equal(t, conv.ID, loaded.ID)
	require.Equal(t, 2, loaded.Len())
	require.Equal(t, model.RoleUser, loaded.All()[0].Role)
	require.Equal(t, "Image Analysis Agent", loaded.All()[1].SourceLabel)
}

func TestSaveFreezesActiveStreams(t *testing.T) {
	s := newTestStore(t)

	conv := model.NewConversation()
	msg := conv.AppendStreamingMessage("NER Agent", "long final text")
	conv.AdvanceStream(msg.ID)
	conv.AdvanceStream(msg.ID)

	_, err := s.Save(conv)
	require.NoError(t, err)

	loaded, err := s.Load(conv.ID)
	require.NoError(t, err)

	got := loaded.ByID(msg.ID)
	require.NotNil(t, got)
	require.False(t, got.IsStreaming)
	// Frozen at what had been revealed, not the unfinished full text.
	require.Equal(t, got.VisibleText, got.FinalText)
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("absent")
	require.True(t, errors.Is(err, ErrConversationNotFound))
}

func TestListOrderAndPreview(t *testing.T) {
	s := newTestStore(t)

	older := model.NewConversation()
	older.AppendUserMessage("first conversation")
	_, err := s.Save(older)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	newer := model.NewConversation()
	newer.AppendUserMessage("Show all patients with pneumonia")
	_, err = s.Save(newer)
	require.NoError(t, err)

	metas, err := s.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	require.Equal(t, newer.ID, metas[0].ID)
	require.Contains(t, metas[0].Preview, "Show all patients")
	require.Equal(t, 1, metas[0].MessageCount)
}

func TestListSkipsCorruptFiles(t *testing.T) {
	s := newTestStore(t)

	conv := model.NewConversation()
	conv.AppendUserMessage("valid")
	_, err := s.Save(conv)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(s.BaseDir, "broken.json"), []byte("{not json"), 0o644))

	metas, err := s.List()
	require.NoError(t, err)
	require.Len(t, metas, 1)
}

func TestDeleteAndClear(t *testing.T) {
	s := newTestStore(t)

	conv := model.NewConversation()
	conv.AppendUserMessage("to be deleted")
	id, err := s.Save(conv)
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))
	require.True(t, errors.Is(s.Delete(id), ErrConversationNotFound))

	other := model.NewConversation()
	other.AppendUserMessage("survivor")
	_, err = s.Save(other)
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	metas, err := s.List()
	require.NoError(t, err)
	require.Empty(t, metas)
}

func TestEnforceLimit(t *testing.T) {
	s := newTestStore(t)
	s.MaxConversations = 2

	var ids []string
	for i := 0; i < 3; i++ {
		conv := model.NewConversation()
		conv.AppendUserMessage("conversation")
		id, err := s.Save(conv)
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(5 * time.Millisecond)
	}

	metas, err := s.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)

	// The oldest one is gone.
	_, err = s.Load(ids[0])
	require.True(t, errors.Is(err, ErrConversationNotFound))
}
