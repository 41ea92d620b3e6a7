package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskquest/internal/ident"
	"taskquest/internal/model"
	"taskquest/internal/repository"
)

type memoryGateway struct {
	blob    []byte
	saves   int
	clears  int
	loadErr error
	saveErr error
}

func (g *memoryGateway) Load(context.Context) (*model.Document, error) {
	if g.loadErr != nil {
		return nil, g.loadErr
	}
	if g.blob == nil {
		return nil, nil
	}
	doc, err := model.Decode(g.blob)
	if err != nil {
		return nil, errors.Join(repository.ErrCorruptDocument, err)
	}
	return doc, nil
}

func (g *memoryGateway) Save(_ context.Context, doc *model.Document) error {
	g.saves++
	if g.saveErr != nil {
		return g.saveErr
	}
	data, err := model.Encode(doc)
	if err != nil {
		return err
	}
	g.blob = data
	return nil
}

func (g *memoryGateway) Clear(context.Context) error {
	g.clears++
	g.blob = nil
	return nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type recorder struct {
	levelUps []levelUp
	renders  []Change
}

func (r *recorder) LevelUp(name string, level int) {
	r.levelUps = append(r.levelUps, levelUp{name: name, level: level})
}

func (r *recorder) Render(change Change) { r.renders = append(r.renders, change) }

type harness struct {
	store   *Store
	gateway *memoryGateway
	clock   *fakeClock
	events  *recorder
	logs    *test.Hook
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, hook := test.NewNullLogger()
	h := &harness{
		gateway: &memoryGateway{},
		clock:   &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)},
		events:  &recorder{},
		logs:    hook,
	}
	h.store = NewStore(h.gateway, Options{
		IDs:      ident.NewSequence("id"),
		Now:      h.clock.Now,
		Location: time.UTC,
		Logger:   logger,
	})
	h.store.Subscribe(h.events)
	return h
}

func (h *harness) category(t *testing.T, name string) *model.Category {
	t.Helper()
	cat, err := h.store.AddCategory(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, cat)
	require.True(t, h.store.SelectCategory(cat.ID))
	return cat
}

func (h *harness) task(t *testing.T, catID, text string, daily bool) *model.Task {
	t.Helper()
	task, err := h.store.AddTask(context.Background(), catID, text, daily)
	require.NoError(t, err)
	require.NotNil(t, task)
	return task
}

func (h *harness) current(t *testing.T, catID string) model.Category {
	t.Helper()
	doc, _ := h.store.Snapshot()
	cat, _ := doc.FindCategory(catID)
	require.NotNil(t, cat)
	return *cat
}

func TestFirstCompletionAwardsOneXP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cat := h.category(t, "Health")
	assert.Equal(t, 1, cat.Level)
	assert.Equal(t, 0, cat.XP)
	assert.Equal(t, 0, cat.ColorIndex)
	assert.ElementsMatch(t, model.Palette[:], cat.ColorOrder)

	task := h.task(t, cat.ID, "Drink water", false)
	assert.False(t, task.Done)

	res, err := h.store.ToggleTask(ctx, cat.ID, task.ID)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Completed)
	assert.True(t, res.Task.Done)
	assert.Equal(t, model.CalendarDate("2026-10-19"), *res.Task.LastCompleted)
	assert.Equal(t, 1, res.Progress.XPGained)
	assert.False(t, res.Progress.LeveledUp)

	got := h.current(t, cat.ID)
	assert.Equal(t, 1, got.XP)
	assert.Equal(t, 1, got.Level)
	assert.Empty(t, h.events.levelUps)
}

func TestLevelUpNotifiesOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cat := h.category(t, "Study")

	var tasks []*model.Task
	for i := 0; i < 5; i++ {
		tasks = append(tasks, h.task(t, cat.ID, "Read chapter", false))
	}
	for _, task := range tasks[:4] {
		_, err := h.store.ToggleTask(ctx, cat.ID, task.ID)
		require.NoError(t, err)
	}
	got := h.current(t, cat.ID)
	require.Equal(t, 4, got.XP)
	require.Equal(t, 1, got.Level)
	require.Empty(t, h.events.levelUps)

	res, err := h.store.ToggleTask(ctx, cat.ID, tasks[4].ID)
	require.NoError(t, err)
	assert.True(t, res.Progress.LeveledUp)
	assert.Equal(t, 2, res.Progress.NewLevel)

	got = h.current(t, cat.ID)
	assert.Equal(t, 5, got.XP)
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, []levelUp{{name: "Study", level: 2}}, h.events.levelUps)
}

func TestUncheckKeepsProgressAndDate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cat := h.category(t, "Chores")
	task := h.task(t, cat.ID, "Dishes", true)

	_, err := h.store.ToggleTask(ctx, cat.ID, task.ID)
	require.NoError(t, err)
	h.clock.now = h.clock.now.Add(48 * time.Hour)

	res, err := h.store.ToggleTask(ctx, cat.ID, task.ID)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.False(t, res.Task.Done)
	assert.Equal(t, model.CalendarDate("2026-10-19"), *res.Task.LastCompleted)

	got := h.current(t, cat.ID)
	assert.Equal(t, 1, got.XP)
	assert.Equal(t, 1, got.Level)

	// Re-completing is rewarded again.
	_, err = h.store.ToggleTask(ctx, cat.ID, task.ID)
	require.NoError(t, err)
	got = h.current(t, cat.ID)
	assert.Equal(t, 2, got.XP)
	assert.Equal(t, model.CalendarDate("2026-10-21"), *got.Tasks[0].LastCompleted)
}

func TestDailyStaleCheck(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cat := h.category(t, "Health")
	daily := h.task(t, cat.ID, "Vitamins", true)
	oneOff := h.task(t, cat.ID, "Book dentist", false)

	for _, id := range []string{daily.ID, oneOff.ID} {
		_, err := h.store.ToggleTask(ctx, cat.ID, id)
		require.NoError(t, err)
	}

	changed, err := h.store.CheckDailyReset(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "completed today")

	h.clock.now = h.clock.now.Add(24 * time.Hour)
	changed, err = h.store.CheckDailyReset(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	got := h.current(t, cat.ID)
	assert.False(t, got.Tasks[0].Done)
	assert.True(t, got.Tasks[1].Done, "one-off tasks are never reset")
	assert.Equal(t, 2, got.XP)

	changed, err = h.store.CheckDailyReset(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "idempotent")
	assert.Contains(t, h.events.renders, ChangeDailyReset)
}

func TestForceDailyResetIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cat := h.category(t, "Health")
	daily := h.task(t, cat.ID, "Vitamins", true)
	_, err := h.store.ToggleTask(ctx, cat.ID, daily.ID)
	require.NoError(t, err)

	changed, err := h.store.ForceDailyReset(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, h.current(t, cat.ID).Tasks[0].Done)

	saves := h.gateway.saves
	changed, err = h.store.ForceDailyReset(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, saves, h.gateway.saves, "no save without a change")
}

func TestPaletteCyclesPerCategory(t *testing.T) {
	h := newHarness(t)
	first := h.category(t, "Work")

	var colors []string
	for i := 0; i < 8; i++ {
		colors = append(colors, h.task(t, first.ID, "Task", false).Color)
	}
	assert.Equal(t, first.ColorOrder, colors[:7])
	assert.Equal(t, colors[0], colors[7])
	assert.Equal(t, 1, h.current(t, first.ID).ColorIndex)

	second := h.category(t, "Home")
	task := h.task(t, second.ID, "Laundry", false)
	assert.Equal(t, second.ColorOrder[0], task.Color, "rotation is independent per category")
	assert.Equal(t, 1, h.current(t, first.ID).ColorIndex)
}

func TestValidationRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cat, err := h.store.AddCategory(ctx, "   ")
	require.NoError(t, err)
	assert.Nil(t, cat)

	work, err := h.store.AddCategory(ctx, "  Work ")
	require.NoError(t, err)
	assert.Equal(t, "Work", work.Name)

	task, err := h.store.AddTask(ctx, work.ID, "Write report", false)
	require.NoError(t, err)
	assert.Nil(t, task, "nothing selected")

	require.True(t, h.store.SelectCategory(work.ID))
	task, err = h.store.AddTask(ctx, work.ID, " \t", false)
	require.NoError(t, err)
	assert.Nil(t, task, "blank text")

	home, err := h.store.AddCategory(ctx, "Home")
	require.NoError(t, err)
	task, err = h.store.AddTask(ctx, home.ID, "Vacuum", false)
	require.NoError(t, err)
	assert.Nil(t, task, "category is not the selected one")

	task, err = h.store.AddTask(ctx, "", "Write report", false)
	require.NoError(t, err)
	require.NotNil(t, task, "empty id means the selection")

	assert.False(t, h.store.SelectCategory("missing"))
	assert.Equal(t, work.ID, h.store.Selected().ID)

	res, err := h.store.ToggleTask(ctx, work.ID, "missing")
	require.NoError(t, err)
	assert.Nil(t, res)
	res, err = h.store.ToggleTask(ctx, "missing", task.ID)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestDeleteCategory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cat := h.category(t, "Health")
	h.task(t, cat.ID, "Walk", false)
	other, err := h.store.AddCategory(ctx, "Work")
	require.NoError(t, err)

	var prompts []string
	refuse := ConfirmFunc(func(msg string) bool {
		prompts = append(prompts, msg)
		return false
	})
	deleted, err := h.store.DeleteCategory(ctx, cat.ID, refuse)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, []string{`Delete category "Health" and all its tasks?`}, prompts)

	deleted, err = h.store.DeleteCategory(ctx, cat.ID, nil)
	require.NoError(t, err)
	assert.False(t, deleted, "no confirmer means no")

	deleted, err = h.store.DeleteCategory(ctx, cat.ID, AlwaysConfirm)
	require.NoError(t, err)
	assert.True(t, deleted)

	doc, selected := h.store.Snapshot()
	assert.Empty(t, selected)
	require.Len(t, doc.Categories, 1)
	assert.Equal(t, other.ID, doc.Categories[0].ID)
	assert.Contains(t, h.events.renders, ChangeSelection)

	deleted, err = h.store.DeleteCategory(ctx, cat.ID, AlwaysConfirm)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteUnselectedCategoryKeepsCursor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.category(t, "Health")
	second := h.category(t, "Work")

	deleted, err := h.store.DeleteCategory(ctx, first.ID, AlwaysConfirm)
	require.NoError(t, err)
	require.True(t, deleted)
	_, selected := h.store.Snapshot()
	assert.Equal(t, second.ID, selected)
}

func TestResetCategoryTasks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cat := h.category(t, "Health")
	a := h.task(t, cat.ID, "Walk", false)
	h.task(t, cat.ID, "Run", true)
	_, err := h.store.ToggleTask(ctx, cat.ID, a.ID)
	require.NoError(t, err)

	changed, err := h.store.ResetCategoryTasks(ctx, cat.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	got := h.current(t, cat.ID)
	assert.Equal(t, 0, got.DoneCount())
	assert.Equal(t, 1, got.XP)

	changed, err = h.store.ResetCategoryTasks(ctx, cat.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = h.store.ResetCategoryTasks(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestResetAllClearsSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.category(t, "Health")
	require.NotNil(t, h.gateway.blob)

	reset, err := h.store.ResetAll(ctx, ConfirmFunc(func(string) bool { return false }))
	require.NoError(t, err)
	assert.False(t, reset)

	reset, err = h.store.ResetAll(ctx, AlwaysConfirm)
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Nil(t, h.gateway.blob)
	assert.Equal(t, 1, h.gateway.clears)

	doc, selected := h.store.Snapshot()
	assert.Empty(t, doc.Categories)
	assert.Empty(t, selected)
}

func TestOpenLoadsAndResetsStale(t *testing.T) {
	h := newHarness(t)
	stored := &model.Document{Categories: []model.Category{{
		ID: "c1", Name: "Health", XP: 3, Level: 1,
		ColorOrder: append([]string{}, model.Palette[:]...),
		Tasks: []model.Task{
			{ID: "t1", Text: "Vitamins", Done: true, Daily: true, LastCompleted: model.NewDate("2026-10-18"), Color: model.Palette[0]},
			{ID: "t2", Text: "Water", Done: true, Daily: true, LastCompleted: model.NewDate("2026-10-19"), Color: model.Palette[1]},
		},
	}}}
	require.NoError(t, h.gateway.Save(context.Background(), stored))

	require.NoError(t, h.store.Open(context.Background()))

	got := h.current(t, "c1")
	assert.False(t, got.Tasks[0].Done)
	assert.True(t, got.Tasks[1].Done)
	assert.Equal(t, 3, got.XP)
	assert.Equal(t, []Change{ChangeDailyReset, ChangeLoaded}, h.events.renders)

	reloaded, err := h.gateway.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded.Categories[0].Tasks[0].Done, "reset was persisted")
}

func TestOpenIgnoresCorruptDocument(t *testing.T) {
	h := newHarness(t)
	h.gateway.blob = []byte("{not json")

	require.NoError(t, h.store.Open(context.Background()))

	doc, _ := h.store.Snapshot()
	assert.Empty(t, doc.Categories)
	entry := h.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
}

func TestOpenPropagatesStorageFailure(t *testing.T) {
	h := newHarness(t)
	h.gateway.loadErr = errors.New("disk on fire")

	err := h.store.Open(context.Background())
	assert.ErrorContains(t, err, "disk on fire")
}

func TestSaveFailureIsReturned(t *testing.T) {
	h := newHarness(t)
	h.gateway.saveErr = errors.New("read-only")

	cat, err := h.store.AddCategory(context.Background(), "Work")
	assert.ErrorContains(t, err, "save document")
	require.NotNil(t, cat, "in-memory state still changes")

	doc, _ := h.store.Snapshot()
	assert.Len(t, doc.Categories, 1)

	var levels []log.Level
	for _, entry := range h.logs.AllEntries() {
		levels = append(levels, entry.Level)
	}
	assert.Contains(t, levels, log.ErrorLevel)
}

func TestSnapshotIsDetached(t *testing.T) {
	h := newHarness(t)
	cat := h.category(t, "Work")

	doc, _ := h.store.Snapshot()
	doc.Categories[0].Name = "Hacked"
	sel := h.store.Selected()
	sel.XP = 99

	got := h.current(t, cat.ID)
	assert.Equal(t, "Work", got.Name)
	assert.Equal(t, 0, got.XP)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	h := newHarness(t)
	var renders int
	unsubscribe := h.store.Subscribe(ListenerFuncs{OnRender: func(Change) { renders++ }})

	h.category(t, "Work")
	assert.Equal(t, 2, renders, "add + select")

	unsubscribe()
	h.store.ClearSelection()
	assert.Equal(t, 2, renders)
}

func TestStoreRoundTripThroughFileSlot(t *testing.T) {
	ctx := context.Background()
	slot := repository.NewFileSlot(filepath.Join(t.TempDir(), "doc.json"))
	clock := &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	opts := Options{IDs: ident.NewSequence("id"), Now: clock.Now, Location: time.UTC}

	first := NewStore(slot, opts)
	require.NoError(t, first.Open(ctx))
	cat, err := first.AddCategory(ctx, "Health")
	require.NoError(t, err)
	require.True(t, first.SelectCategory(cat.ID))
	task, err := first.AddTask(ctx, cat.ID, "Walk", true)
	require.NoError(t, err)
	_, err = first.ToggleTask(ctx, cat.ID, task.ID)
	require.NoError(t, err)

	second := NewStore(slot, opts)
	require.NoError(t, second.Open(ctx))

	want, _ := first.Snapshot()
	got, selected := second.Snapshot()
	assert.Equal(t, want, got)
	assert.Empty(t, selected, "selection is not persisted")
}
