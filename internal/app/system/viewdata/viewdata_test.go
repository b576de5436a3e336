package viewdata_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/leadcentral/internal/app/system/viewdata"
	"github.com/dalemusser/leadcentral/internal/testutil"
)

func TestNewWithSignedInAdmin(t *testing.T) {
	admin := testutil.AdminUser()
	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/dashboard", admin)

	vm := viewdata.New(req)

	if !vm.IsLoggedIn {
		t.Error("IsLoggedIn = false for a signed-in user")
	}
	if vm.UserName != admin.Name {
		t.Errorf("UserName = %q, want %q", vm.UserName, admin.Name)
	}
	if vm.Email != admin.Email {
		t.Errorf("Email = %q, want %q", vm.Email, admin.Email)
	}
	if vm.Role != "admin" {
		t.Errorf("Role = %q, want admin", vm.Role)
	}
	if !vm.CanManageWorkspace {
		t.Error("CanManageWorkspace = false for an admin")
	}
	if vm.SiteName != viewdata.SiteName {
		t.Errorf("SiteName = %q, want %q", vm.SiteName, viewdata.SiteName)
	}
	if vm.CSRFToken == "" {
		t.Error("CSRFToken is empty")
	}
}

func TestNewWithWriter(t *testing.T) {
	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/dashboard/blogs", testutil.WriterUser())

	vm := viewdata.New(req)

	if vm.Role != "writer" {
		t.Errorf("Role = %q, want writer", vm.Role)
	}
	if vm.CanManageWorkspace {
		t.Error("CanManageWorkspace = true for a writer")
	}
}

func TestNewWithAnonymousVisitor(t *testing.T) {
	req := testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, "/", nil))

	vm := viewdata.New(req)

	if vm.IsLoggedIn {
		t.Error("IsLoggedIn = true with no session")
	}
	if vm.UserName != "" || vm.Email != "" {
		t.Errorf("visitor VM carries user data: name=%q email=%q", vm.UserName, vm.Email)
	}
	if vm.CanManageWorkspace {
		t.Error("CanManageWorkspace = true with no session")
	}
}

func TestNewBaseVMSetsTitleAndBackURL(t *testing.T) {
	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/dashboard/domains", testutil.AdminUser())

	vm := viewdata.NewBaseVM(req, "Domains", "/dashboard")

	if vm.Title != "Domains" {
		t.Errorf("Title = %q, want Domains", vm.Title)
	}
	if vm.BackURL != "/dashboard" {
		t.Errorf("BackURL = %q, want /dashboard", vm.BackURL)
	}
}
