package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chukwumela909/project-bolt/pkg/types"
)

func TestContainer_RefreshReplaces(t *testing.T) {
	c := NewContainer[[]string]("test")
	fixed := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	if _, loaded := c.Get(); loaded {
		t.Fatal("new container should not be loaded")
	}

	err := c.Refresh(context.Background(), func(context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	st := c.State()
	if !st.Loaded || st.Loading || st.Err != nil {
		t.Errorf("unexpected state %+v", st)
	}
	if len(st.Value) != 2 || !st.UpdatedAt.Equal(fixed) {
		t.Errorf("unexpected value %v at %v", st.Value, st.UpdatedAt)
	}

	_ = c.Refresh(context.Background(), func(context.Context) ([]string, error) {
		return []string{"c"}, nil
	})
	if v, _ := c.Get(); len(v) != 1 || v[0] != "c" {
		t.Errorf("expected value to be replaced, got %v", v)
	}
}

func TestContainer_FailureKeepsPreviousValue(t *testing.T) {
	c := NewContainer[int]("n")
	c.Replace(7)

	boom := errors.New("boom")
	err := c.Refresh(context.Background(), func(context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	st := c.State()
	if st.Value != 7 || !st.Loaded {
		t.Errorf("previous value lost: %+v", st)
	}
	if !errors.Is(st.Err, boom) {
		t.Errorf("error not recorded: %v", st.Err)
	}

	_ = c.Refresh(context.Background(), func(context.Context) (int, error) { return 8, nil })
	if st := c.State(); st.Err != nil || st.Value != 8 {
		t.Errorf("successful refresh should clear the error: %+v", st)
	}
}

func TestContainer_LoadingFlag(t *testing.T) {
	c := NewContainer[int]("n")
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan error)
	go func() {
		done <- c.Refresh(context.Background(), func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()

	<-started
	if !c.State().Loading {
		t.Error("expected Loading during fetch")
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if c.State().Loading {
		t.Error("Loading should be cleared after fetch")
	}
}

func TestContainer_LoadOnce(t *testing.T) {
	c := NewContainer[[]types.Plan]("plans")
	calls := 0
	fetch := func(context.Context) ([]types.Plan, error) {
		calls++
		return types.DefaultPlans(), nil
	}

	for i := 0; i < 3; i++ {
		if err := c.LoadOnce(context.Background(), fetch); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 fetch, got %d", calls)
	}
}

func TestContainer_ConcurrentAccess(t *testing.T) {
	c := NewContainer[int]("n")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = c.Refresh(context.Background(), func(context.Context) (int, error) { return i, nil })
		}(i)
		go func() {
			defer wg.Done()
			_ = c.State()
		}()
	}
	wg.Wait()
	if _, loaded := c.Get(); !loaded {
		t.Error("expected container to be loaded")
	}
}

func TestStores_ResetKeepsPlans(t *testing.T) {
	s := New()
	s.User.Replace(&types.User{ID: "u1"})
	s.Stakes.Replace([]types.StakeRecord{{ID: "s1"}})
	s.Plans.Replace(types.DefaultPlans())

	s.Reset()

	if _, loaded := s.User.Get(); loaded {
		t.Error("user should be reset")
	}
	if _, loaded := s.Stakes.Get(); loaded {
		t.Error("stakes should be reset")
	}
	if plans, loaded := s.Plans.Get(); !loaded || len(plans) != 4 {
		t.Error("plans should survive reset")
	}
}
