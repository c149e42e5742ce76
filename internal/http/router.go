package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires the handlers into the route table. AdminMiddleware wraps
// only the /admin/ subtree; Middleware wraps the whole handler chain.
type RouterConfig struct {
	Clock     *ClockHandler
	Login     *LoginHandler
	Auth      *AuthHandler
	Employees *EmployeeHandler
	Directory *DirectoryHandler
	Shifts    *ShiftHandler
	Entries   *EntryHandler
	Reports   *ReportHandler

	Middleware      []func(http.Handler) http.Handler
	AdminMiddleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	registerKioskRoutes(mux, cfg)
	registerSessionRoutes(mux, cfg)
	registerAdminRoutes(mux, cfg)

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func registerKioskRoutes(mux *http.ServeMux, cfg RouterConfig) {
	if cfg.Clock != nil {
		mux.HandleFunc("/clock/start", postOnly(cfg.Clock.StartTask))
		mux.HandleFunc("/clock/end", postOnly(cfg.Clock.EndTask))
		mux.HandleFunc("/clock/state", getOnly(cfg.Clock.State))
		mux.HandleFunc("/clock/totals", getOnly(cfg.Clock.Totals))
		mux.HandleFunc("/breaks/start", postOnly(cfg.Clock.StartBreak))
		mux.HandleFunc("/breaks/end", postOnly(cfg.Clock.EndBreak))
	}

	if cfg.Login != nil {
		mux.HandleFunc("/login/identify", postOnly(cfg.Login.Identify))
		mux.HandleFunc("/login/pin/setup", postOnly(cfg.Login.SetupPIN))
		mux.HandleFunc("/login/pin/verify", postOnly(cfg.Login.VerifyPIN))
	}

	if cfg.Directory != nil {
		mux.HandleFunc("/departments", getOnly(cfg.Directory.ListDepartments))
		mux.HandleFunc("/departments/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/departments/")
			id, ok := strings.CutSuffix(rest, "/tasks")
			if !ok || id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithDepartmentID(r.Context(), id))
			cfg.Directory.ListTasks(w, r)
		})
	}
}

func registerSessionRoutes(mux *http.ServeMux, cfg RouterConfig) {
	if cfg.Auth == nil {
		return
	}
	mux.HandleFunc("/sessions", postOnly(cfg.Auth.CreateSession))
	mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, http.MethodDelete)
			return
		}
		cfg.Auth.DeleteCurrentSession(w, r)
	})
}

func registerAdminRoutes(mux *http.ServeMux, cfg RouterConfig) {
	admin := http.NewServeMux()

	if cfg.Employees != nil {
		admin.HandleFunc("/admin/employees", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Employees.List(w, r)
			case http.MethodPost:
				cfg.Employees.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		admin.HandleFunc("/admin/employees/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/admin/employees/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}
			if rest == "import" {
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Employees.Import(w, r)
				return
			}
			if id, ok := strings.CutSuffix(rest, "/pin/reset"); ok && id != "" {
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				r = r.WithContext(ContextWithEmployeeID(r.Context(), id))
				cfg.Employees.ResetPIN(w, r)
				return
			}
			r = r.WithContext(ContextWithEmployeeID(r.Context(), rest))
			switch r.Method {
			case http.MethodGet:
				cfg.Employees.Get(w, r)
			case http.MethodPut:
				cfg.Employees.Update(w, r)
			case http.MethodDelete:
				cfg.Employees.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Directory != nil {
		admin.HandleFunc("/admin/departments", postOnly(cfg.Directory.CreateDepartment))
		admin.HandleFunc("/admin/departments/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/admin/departments/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithDepartmentID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Directory.RenameDepartment(w, r)
			case http.MethodDelete:
				cfg.Directory.DeleteDepartment(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
		admin.HandleFunc("/admin/tasks", postOnly(cfg.Directory.CreateTask))
		admin.HandleFunc("/admin/tasks/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/admin/tasks/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithTaskID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Directory.RenameTask(w, r)
			case http.MethodDelete:
				cfg.Directory.DeleteTask(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Shifts != nil {
		admin.HandleFunc("/admin/shifts", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Shifts.List(w, r)
			case http.MethodPost:
				cfg.Shifts.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		admin.HandleFunc("/admin/shifts/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/admin/shifts/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithShiftID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Shifts.Update(w, r)
			case http.MethodDelete:
				cfg.Shifts.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Entries != nil {
		admin.HandleFunc("/admin/entries/work/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/admin/entries/work/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithEntryID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Entries.AdjustWork(w, r)
			case http.MethodDelete:
				cfg.Entries.DeleteWork(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
		admin.HandleFunc("/admin/entries/breaks/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/admin/entries/breaks/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithEntryID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Entries.AdjustBreak(w, r)
			case http.MethodDelete:
				cfg.Entries.DeleteBreak(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Reports != nil {
		admin.HandleFunc("/admin/reports/timesheet", getOnly(cfg.Reports.Timesheet))
	}

	var handler http.Handler = admin
	for i := len(cfg.AdminMiddleware) - 1; i >= 0; i-- {
		if cfg.AdminMiddleware[i] != nil {
			handler = cfg.AdminMiddleware[i](handler)
		}
	}
	mux.Handle("/admin/", handler)
}

func postOnly(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		handler(w, r)
	}
}

func getOnly(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		handler(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
