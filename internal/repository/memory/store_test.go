package memory

import (
	"testing"

	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
)

func TestStoreContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Store {
		return NewStore()
	})
}

func TestStoreIsNotTransactional(t *testing.T) {
	var store repository.Store = NewStore()
	_, ok := store.(repository.Transactor)
	assert.False(t, ok)
}
