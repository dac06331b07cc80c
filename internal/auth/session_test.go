package auth

import "testing"

func TestResolveOrCreateAccount_ReusesSameAPIKey(t *testing.T) {
	m := NewManager()
	accountID1, token, reused := m.ResolveOrCreateAccount("bot-key-1")
	if accountID1 == 0 {
		t.Fatalf("expected non-zero account id")
	}
	if token == "" {
		t.Fatalf("expected session token")
	}
	if reused {
		t.Fatalf("new account should not be marked reused")
	}

	accountID2, token2, reused2 := m.ResolveOrCreateAccount("bot-key-1")
	if !reused2 {
		t.Fatalf("expected reused account for the same api key")
	}
	if accountID1 != accountID2 {
		t.Fatalf("expected same account id, got %d and %d", accountID1, accountID2)
	}
	if token2 == "" {
		t.Fatalf("expected a fresh session token on reconnect")
	}
}

func TestResolveOrCreateAccount_DifferentAPIKeysGetDifferentAccounts(t *testing.T) {
	m := NewManager()
	accountID1, _, _ := m.ResolveOrCreateAccount("bot-key-1")
	accountID2, _, reused2 := m.ResolveOrCreateAccount("bot-key-2")
	if reused2 {
		t.Fatalf("a different api key should not be reused")
	}
	if accountID1 == accountID2 {
		t.Fatalf("expected a different account id for a different api key")
	}
}

func TestResolveOrCreateAccount_EmptyKeyAlwaysMintsNewAccount(t *testing.T) {
	m := NewManager()
	accountID1, _, reused1 := m.ResolveOrCreateAccount("")
	accountID2, _, reused2 := m.ResolveOrCreateAccount("")
	if reused1 || reused2 {
		t.Fatalf("an empty api key carries no durable identity")
	}
	if accountID1 == accountID2 {
		t.Fatalf("expected a different account id each time for an empty key")
	}
}
