package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/knoguchi/themefather/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_IdleIgnored(t *testing.T) {
	s := NewStore()

	_, _, ok := s.Describe(1, "dark mode")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestFlow_SelectDescribeFinish(t *testing.T) {
	s := NewStore()
	s.SelectPlatform(1, theme.IOS)

	st, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, theme.IOS, st.Platform)
	assert.Nil(t, st.Description)
	assert.False(t, st.Complete())

	st, ticket, ok := s.Describe(1, "dark mode")
	require.True(t, ok)
	require.True(t, st.Complete())
	assert.Equal(t, "dark mode", *st.Description)

	_, _, ok = s.Describe(1, "again")
	assert.False(t, ok, "a second description must be ignored")

	s.Finish(1, ticket)
	_, ok = s.Get(1)
	assert.False(t, ok)

	_, _, ok = s.Describe(1, "after finish")
	assert.False(t, ok)
}

func TestDescribe_EmptyTextIsADescription(t *testing.T) {
	s := NewStore()
	s.SelectPlatform(1, theme.MacOS)

	st, _, ok := s.Describe(1, "")
	require.True(t, ok)
	assert.True(t, st.Complete())
	assert.Equal(t, "", *st.Description)
}

func TestReset_ClearsAnyState(t *testing.T) {
	s := NewStore()
	s.Reset(1)
	assert.Equal(t, 0, s.Len())

	s.SelectPlatform(1, theme.IOS)
	_, _, ok := s.Describe(1, "red")
	require.True(t, ok)

	s.Reset(1)
	_, ok = s.Get(1)
	assert.False(t, ok)

	s.SelectPlatform(1, theme.Android)
	st, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, theme.Android, st.Platform)
	assert.Nil(t, st.Description, "new flow must not carry the old description")
}

func TestSelectPlatform_Overwrites(t *testing.T) {
	s := NewStore()
	s.SelectPlatform(1, theme.IOS)
	s.SelectPlatform(1, theme.Windows)

	st, _ := s.Get(1)
	assert.Equal(t, theme.Windows, st.Platform)
}

func TestFinish_KeepsNewerFlow(t *testing.T) {
	s := NewStore()
	s.SelectPlatform(1, theme.IOS)
	_, ticket, ok := s.Describe(1, "blue")
	require.True(t, ok)

	// user restarts while the first synthesis is still running
	s.SelectPlatform(1, theme.Android)
	s.Finish(1, ticket)

	st, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, theme.Android, st.Platform)
	assert.Nil(t, st.Description)
}

func TestStore_UsersAreIndependent(t *testing.T) {
	s := NewStore()
	s.SelectPlatform(1, theme.IOS)
	s.SelectPlatform(2, theme.MacOS)

	s.Reset(1)
	st, ok := s.Get(2)
	require.True(t, ok)
	assert.Equal(t, theme.MacOS, st.Platform)
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			s.SelectPlatform(user, theme.IOS)
			_, ticket, ok := s.Describe(user, fmt.Sprintf("desc %d", user))
			if ok {
				s.Finish(user, ticket)
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, 0, s.Len())
}
