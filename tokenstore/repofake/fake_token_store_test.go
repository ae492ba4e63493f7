package repofake_test

import (
	"testing"

	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/repofake"
	"github.com/jrsteele09/go-ticket-client/tokenstore/storetest"
)

func TestFakeTokenStore(t *testing.T) {
	storetest.RunRepoContract(t, func(t *testing.T) tokenstore.Repo {
		return repofake.NewFakeTokenStore()
	})
}
