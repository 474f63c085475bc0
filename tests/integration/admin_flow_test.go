package integration

import (
	"fmt"
	"net/http"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"audycon/internal/config"
	"audycon/internal/models"
)

func TestAccountLifecycleFlow(t *testing.T) {
	app := setupApp(t)
	_, adminToken := app.createAdmin(t, "admin@audycon.test")
	userID, _ := app.signupUser(t, "ana@audycon.test", "Ana", "García")

	// The directory shows both accounts.
	rec := app.request("GET", "/api/v1/admin/users", "", adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	users := parseJSON(t, rec)["users"].([]interface{})
	if len(users) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(users))
	}

	// Promote Ana to CONTADOR.
	rec = app.request("PUT", "/api/v1/admin/users/"+userID+"/role", `{"role":"CONTADOR"}`, adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("role change failed: %d %s", rec.Code, rec.Body.String())
	}
	account := parseJSON(t, rec)["account"].(map[string]interface{})
	if account["role"] != "CONTADOR" {
		t.Errorf("expected CONTADOR, got %v", account["role"])
	}

	// Suspend and reactivate.
	rec = app.request("POST", "/api/v1/admin/users/"+userID+"/status", "", adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("suspend failed: %d %s", rec.Code, rec.Body.String())
	}
	if status := parseJSON(t, rec)["account"].(map[string]interface{})["status"]; status != "SUSPENDED" {
		t.Errorf("expected SUSPENDED, got %v", status)
	}
	rec = app.request("POST", "/api/v1/admin/users/"+userID+"/status", "", adminToken)
	if status := parseJSON(t, rec)["account"].(map[string]interface{})["status"]; status != "ACTIVE" {
		t.Errorf("expected ACTIVE, got %v", status)
	}

	// Edit the profile.
	rec = app.request("PUT", "/api/v1/admin/users/"+userID,
		`{"first_name":"Ana","last_name":"García","company":"Acme SA"}`, adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit failed: %d %s", rec.Code, rec.Body.String())
	}

	// Delete her. The credential must go first, then the soft delete.
	rec = app.request("POST", "/api/v1/admin/users/delete",
		fmt.Sprintf(`{"user_id":%q}`, userID), adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
	if len(app.Identity.deleted) != 1 || app.Identity.deleted[0] != userID {
		t.Errorf("expected credential removed for %s, got %v", userID, app.Identity.deleted)
	}

	var row models.Account
	if err := app.DB.Where("id = ?", userID).First(&row).Error; err != nil {
		t.Fatalf("expected profile row retained: %v", err)
	}
	if row.Status != models.StatusDeleted {
		t.Errorf("expected DELETED, got %s", row.Status)
	}

	// The directory no longer shows her.
	rec = app.request("GET", "/api/v1/admin/users", "", adminToken)
	users = parseJSON(t, rec)["users"].([]interface{})
	if len(users) != 1 {
		t.Errorf("expected 1 account after deletion, got %d", len(users))
	}

	// And she can no longer be toggled.
	rec = app.request("POST", "/api/v1/admin/users/"+userID+"/status", "", adminToken)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 toggling a deleted account, got %d", rec.Code)
	}
}

func TestDeletionGuards(t *testing.T) {
	t.Run("self_deletion", func(t *testing.T) {
		app := setupApp(t)
		adminID, adminToken := app.createAdmin(t, "admin@audycon.test")
		app.createAdmin(t, "admin2@audycon.test")

		rec := app.request("POST", "/api/v1/admin/users/delete",
			fmt.Sprintf(`{"user_id":%q}`, adminID), adminToken)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
		if code := errorCode(t, rec); code != "SELF_DELETE" {
			t.Errorf("expected SELF_DELETE, got %s", code)
		}
	})

	t.Run("last_admin", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("console-secret"), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash secret: %v", err)
		}
		t.Setenv("ADMIN_PANEL_SECRET_HASH", string(hash))
		if _, err := config.Load(); err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		app := setupApp(t)
		adminAID, tokenA := app.createAdmin(t, "a@audycon.test")
		adminBID, _ := app.createAdmin(t, "b@audycon.test")

		// A deletes B, leaving A as the only administrator.
		rec := app.request("POST", "/api/v1/admin/users/delete",
			fmt.Sprintf(`{"user_id":%q}`, adminBID), tokenA)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected second admin deletable: %d %s", rec.Code, rec.Body.String())
		}

		// Even the panel secret, which bypasses actor checks entirely,
		// cannot remove the last administrator.
		rec = app.request("POST", "/api/v1/admin/users/delete",
			fmt.Sprintf(`{"user_id":%q,"secret":"console-secret"}`, adminAID), "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
		if code := errorCode(t, rec); code != "LAST_ADMIN" {
			t.Errorf("expected LAST_ADMIN, got %s", code)
		}
	})

	t.Run("identity_store_failure_aborts", func(t *testing.T) {
		app := setupApp(t)
		_, adminToken := app.createAdmin(t, "admin@audycon.test")
		userID, _ := app.signupUser(t, "ana@audycon.test", "Ana", "García")

		app.Identity.deleteErr = fmt.Errorf("upstream down")

		rec := app.request("POST", "/api/v1/admin/users/delete",
			fmt.Sprintf(`{"user_id":%q}`, userID), adminToken)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
		}

		var row models.Account
		app.DB.Where("id = ?", userID).First(&row)
		if row.Status != models.StatusActive {
			t.Errorf("expected account untouched, got %s", row.Status)
		}
	})
}

func TestPanelSecretDeletion(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("console-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash secret: %v", err)
	}
	t.Setenv("ADMIN_PANEL_SECRET_HASH", string(hash))
	if _, err := config.Load(); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}

	app := setupApp(t)
	app.createAdmin(t, "admin@audycon.test")
	userID, _ := app.signupUser(t, "ana@audycon.test", "Ana", "García")

	t.Run("valid_secret_deletes_without_actor", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/admin/users/delete",
			fmt.Sprintf(`{"user_id":%q,"secret":"console-secret"}`, userID), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		// The audit entry exists but has no actor to attribute.
		var entry models.AuditEntry
		if err := app.DB.Where("action = ?", models.ActionDeleteUser).First(&entry).Error; err != nil {
			t.Fatalf("expected DELETE_USER entry: %v", err)
		}
		if entry.PerformedBy != nil {
			t.Errorf("expected unattributed entry, got performer %v", *entry.PerformedBy)
		}
	})

	t.Run("wrong_secret_rejected", func(t *testing.T) {
		otherID, _ := app.signupUser(t, "bruno@audycon.test", "Bruno", "Díaz")
		rec := app.request("POST", "/api/v1/admin/users/delete",
			fmt.Sprintf(`{"user_id":%q,"secret":"guess"}`, otherID), "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAdminGate(t *testing.T) {
	app := setupApp(t)
	_, adminToken := app.createAdmin(t, "admin@audycon.test")
	_, userToken := app.signupUser(t, "ana@audycon.test", "Ana", "García")

	t.Run("non_admin_cannot_reach_console", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/admin/users", "", userToken)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "ADMIN_ONLY" {
			t.Errorf("expected ADMIN_ONLY, got %s", code)
		}
	})

	t.Run("no_token_is_unauthorized", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/admin/users", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("suspension_locks_an_admin_out_immediately", func(t *testing.T) {
		adminBID, tokenB := app.createAdmin(t, "b@audycon.test")

		rec := app.request("GET", "/api/v1/admin/users", "", tokenB)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected B to have access first: %d", rec.Code)
		}

		rec = app.request("POST", "/api/v1/admin/users/"+adminBID+"/status", "", adminToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("suspend failed: %d %s", rec.Code, rec.Body.String())
		}

		// The token is still cryptographically valid, but role and status
		// are re-read per request.
		rec = app.request("GET", "/api/v1/admin/users", "", tokenB)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected suspended admin locked out, got %d", rec.Code)
		}
	})
}
