package mining

// Test Plan for Miner:
// - Saves <Class>_after.java from the commit and <Class>_before.java from its parent
// - A class named by several refactorings of one record is saved once
// - Records without the configured refactoring type are not cloned
// - A repository shared by several records is cloned once
// - Oldest commit: after version saved, ErrNoParent reported
// - Unknown commit reports ErrNoHistory, unmatched class reports ErrFileNotFound
// - Unparsable source is not written and reports ErrUnparsable
// - Clone failures are collected per record and never abort the run
// - Cancelled context aborts Mine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/semi/internal/git"
)

const (
	shopURL   = "https://github.com/acme/shop.git"
	cartPath  = "src/main/java/com/acme/shop/Cart.java"
	itemPath  = "src/main/java/com/acme/shop/Item.java"
	cartDesc  = "Extract Method private subtotal() : int extracted from public total() : int in class com.acme.shop.Cart"
	itemDesc  = "Extract Method private label() : String extracted from public toString() : String in class com.acme.shop.Item"
	cartAfter = `package com.acme.shop;
class Cart {
    int total() { return subtotal() + 1; }
    private int subtotal() { return 2; }
}
`
	cartBefore = `package com.acme.shop;
class Cart {
    int total() { int s = 2; return s + 1; }
}
`
	itemBroken = "class Item { String toString( { return ; }"
)

func shopRepo() *git.MockRepo {
	return &git.MockRepo{Commits: []git.MockCommit{
		{SHA: "c4", Files: map[string]string{itemPath: itemBroken}},
		{SHA: "c3", Files: map[string]string{cartPath: cartAfter, "README.md": "docs"}},
		{SHA: "c2", Files: map[string]string{"build.gradle": "apply plugin: 'java'"}},
		{SHA: "c1", Files: map[string]string{cartPath: cartBefore}},
	}}
}

func extract(desc string) Refactoring {
	return Refactoring{Type: "Extract Method", Description: desc}
}

type recordingProgress struct {
	mu        sync.Mutex
	total     int
	processed []RecordID
}

func (p *recordingProgress) OnRecordsSelected(total int) { p.total = total }

func (p *recordingProgress) OnRecordProcessed(id RecordID, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, id)
}

func newTestMiner(t *testing.T, ops git.Operations) (*Miner, string) {
	t.Helper()
	out := t.TempDir()
	m := NewMiner(ops, Options{
		ReposDir:        "/repos",
		OutputDir:       out,
		RefactoringType: "Extract Method",
		Jobs:            4,
	}, nil)
	return m, out
}

func TestMine(t *testing.T) {
	t.Parallel()

	ops := git.NewMockGitOps()
	ops.Remotes[shopURL] = shopRepo()
	m, out := newTestMiner(t, ops)

	records := []Record{
		{Repository: shopURL, ID: "1", SHA1: "c3", Refactorings: []Refactoring{
			extract(cartDesc),
			extract(cartDesc),
			{Type: "Rename Method", Description: "Rename Method a() renamed to b() in class com.acme.shop.Cart"},
		}},
		{Repository: "https://github.com/acme/other.git", ID: "2", SHA1: "x1", Refactorings: []Refactoring{
			{Type: "Move Class", Description: "Move Class a.B moved to c.B"},
		}},
		{Repository: shopURL, ID: "3", SHA1: "c1", Refactorings: []Refactoring{extract(cartDesc)}},
		{Repository: shopURL, ID: "4", SHA1: "c9", Refactorings: []Refactoring{extract(cartDesc)}},
		{Repository: shopURL, ID: "5", SHA1: "c3", Refactorings: []Refactoring{extract(itemDesc)}},
		{Repository: shopURL, ID: "6", SHA1: "c4", Refactorings: []Refactoring{extract(itemDesc)}},
	}

	progress := &recordingProgress{}
	summary, err := m.Mine(context.Background(), records, progress)
	require.NoError(t, err)

	assert.Equal(t, 6, summary.Records)
	assert.Equal(t, 5, summary.Selected)
	assert.Equal(t, 5, progress.total)
	assert.Len(t, progress.processed, 5)
	assert.Equal(t, []string{"/repos/shop"}, ops.Clones())

	// Record 1: a full pair, saved once.
	after, err := os.ReadFile(filepath.Join(out, "1", "Cart_after.java"))
	require.NoError(t, err)
	assert.Equal(t, cartAfter, string(after))
	before, err := os.ReadFile(filepath.Join(out, "1", "Cart_before.java"))
	require.NoError(t, err)
	assert.Equal(t, cartBefore, string(before))
	assert.NotContains(t, summary.Failures, RecordID("1"))

	// Record 3: oldest commit.
	assert.FileExists(t, filepath.Join(out, "3", "Cart_after.java"))
	assert.NoFileExists(t, filepath.Join(out, "3", "Cart_before.java"))
	assert.ErrorIs(t, summary.Failures["3"], ErrNoParent)

	assert.ErrorIs(t, summary.Failures["4"], ErrNoHistory)
	assert.ErrorIs(t, summary.Failures["5"], ErrFileNotFound)

	// Record 6: broken source is rejected.
	assert.ErrorIs(t, summary.Failures["6"], ErrUnparsable)
	assert.NoFileExists(t, filepath.Join(out, "6", "Item_after.java"))

	assert.Equal(t, 3, summary.Saved)
	assert.Equal(t, 1, summary.Pairs)
	assert.Len(t, summary.Failures, 4)
}

func TestMine_CloneFailure(t *testing.T) {
	t.Parallel()

	ops := git.NewMockGitOps()
	ops.CloneError = errors.New("Failed to connect to github.com port 443")
	m, _ := newTestMiner(t, ops)

	records := []Record{
		{Repository: shopURL, ID: "1", SHA1: "c3", Refactorings: []Refactoring{extract(cartDesc)}},
		{Repository: "https://github.com/acme/cli.git", ID: "2", SHA1: "a1", Refactorings: []Refactoring{extract(cartDesc)}},
	}
	summary, err := m.Mine(context.Background(), records, nil)
	require.NoError(t, err)
	assert.Len(t, summary.Failures, 2)
	assert.Zero(t, summary.Saved)
}

func TestMine_Cancelled(t *testing.T) {
	t.Parallel()

	ops := git.NewMockGitOps()
	ops.Remotes[shopURL] = shopRepo()
	m, _ := newTestMiner(t, ops)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Mine(ctx, []Record{
		{Repository: shopURL, ID: "1", SHA1: "c3", Refactorings: []Refactoring{extract(cartDesc)}},
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchFile(t *testing.T) {
	t.Parallel()

	changed := []string{"src/com/acme/CartItem.java", "src/com/acme/Cart.java"}
	assert.Equal(t, "src/com/acme/Cart.java", matchFile(changed, "com/acme/Cart"))
	assert.Equal(t, "src/com/acme/CartItem.java", matchFile(changed, "com/acme/CartI"))
	assert.Empty(t, matchFile(changed, "com/acme/Order"))
}
