package testutil

import (
	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
)

// Element ids of the warn-app fixture model.
//
// The user opens the app, which stores a personal token and then either
// uploads it to the cloud server (which persists it in the database) or reads
// a cached copy from an edge cache outside the EU. A separate admin scenario
// runs a health check that touches no component.
const (
	Phone = ir.ElementID("rc_phone")
	Cloud = ir.ElementID("rc_cloud")
	Edge  = ir.ElementID("rc_edge")

	App    = ir.ElementID("ac_app")
	Server = ir.ElementID("ac_server")
	DB     = ir.ElementID("ac_db")
	Cache  = ir.ElementID("ac_cache")

	AppInterface    = ir.ElementID("if_app")
	UploadInterface = ir.ElementID("if_upload")
	StoreInterface  = ir.ElementID("if_store")
	CacheInterface  = ir.ElementID("if_cache")

	OpenSignature   = ir.ElementID("sig_open")
	UploadSignature = ir.ElementID("sig_upload")
	SaveSignature   = ir.ElementID("sig_save")
	ReadSignature   = ir.ElementID("sig_read")

	UploadConnector = ir.ElementID("con_upload")
	StoreConnector  = ir.ElementID("con_store")
	CacheConnector  = ir.ElementID("con_cache")

	UserScenario  = ir.ElementID("us_user")
	AdminScenario = ir.ElementID("us_admin")
)

// WarnAppSequences lists the element ids of the fixture's action sequences
// in the order the finder enumerates them.
var WarnAppSequences = [][]ir.ElementID{
	{"u_start", "u_open", "a_start", "a_token", "a_branch", "a_upload",
		"s_start", "s_save", "d_start", "d_write", "d_stop", "s_stop", "a_stop", "u_stop"},
	{"u_start", "u_open", "a_start", "a_token", "a_branch", "a_cache",
		"c_start", "c_read", "c_stop", "a_stop", "u_stop"},
	{"m_start", "m_check", "m_stop"},
}

func chars(literals ...string) []ir.Characteristic {
	out := make([]ir.Characteristic, 0, len(literals))
	for _, l := range literals {
		out = append(out, ir.Characteristic{Type: "label", Literal: l})
	}
	return out
}

func data(name string, literals ...string) []ir.Variable {
	return []ir.Variable{{Name: name, Characteristics: chars(literals...)}}
}

func next(ids ...ir.ElementID) []ir.ElementID {
	return ids
}

// WarnAppBuilder returns a builder preloaded with the fixture elements, so
// tests can add elements before building.
func WarnAppBuilder() *model.Builder {
	b := model.NewBuilder("WarnApp")
	b.MustAdd(
		model.Element{ID: Phone, Name: "Smartphone", Kind: model.KindResourceContainer, NodeCharacteristics: chars("Smartphone")},
		model.Element{ID: Cloud, Name: "Cloud Server", Kind: model.KindResourceContainer, NodeCharacteristics: chars("CloudEU")},
		model.Element{ID: Edge, Name: "Edge Node", Kind: model.KindResourceContainer, NodeCharacteristics: chars("EdgeNonEU")},

		model.Element{ID: App, Name: "App", Kind: model.KindAssemblyContext, Container: Phone},
		model.Element{ID: Server, Name: "Server", Kind: model.KindAssemblyContext, Container: Cloud},
		model.Element{ID: DB, Name: "Database", Kind: model.KindAssemblyContext, Container: Cloud},
		model.Element{ID: Cache, Name: "Cache", Kind: model.KindAssemblyContext, Container: Edge},

		model.Element{ID: AppInterface, Name: "IApp", Kind: model.KindInterface},
		model.Element{ID: OpenSignature, Name: "open", Kind: model.KindSignature, Interface: AppInterface},
		model.Element{ID: UploadInterface, Name: "IUpload", Kind: model.KindInterface},
		model.Element{ID: UploadSignature, Name: "upload", Kind: model.KindSignature, Interface: UploadInterface},
		model.Element{ID: StoreInterface, Name: "IStore", Kind: model.KindInterface},
		model.Element{ID: SaveSignature, Name: "save", Kind: model.KindSignature, Interface: StoreInterface},
		model.Element{ID: CacheInterface, Name: "ICache", Kind: model.KindInterface},
		model.Element{ID: ReadSignature, Name: "read", Kind: model.KindSignature, Interface: CacheInterface},

		model.Element{ID: UploadConnector, Name: "App to Server", Kind: model.KindConnector, From: App, To: Server, Interface: UploadInterface},
		model.Element{ID: StoreConnector, Name: "Server to Database", Kind: model.KindConnector, From: Server, To: DB, Interface: StoreInterface},
		model.Element{ID: CacheConnector, Name: "App to Cache", Kind: model.KindConnector, From: App, To: Cache, Interface: CacheInterface},

		model.Element{ID: UserScenario, Name: "User", Kind: model.KindUsageScenario, NodeCharacteristics: chars("User")},
		model.Element{ID: AdminScenario, Name: "Admin", Kind: model.KindUsageScenario, NodeCharacteristics: chars("Admin")},

		// User scenario.
		model.Element{ID: "u_start", Kind: model.KindStart, Scope: UserScenario, Successors: next("u_open")},
		model.Element{ID: "u_open", Name: "open app", Kind: model.KindEntryLevelCall, Scope: UserScenario,
			Signature: OpenSignature, Target: "a_start", Successors: next("u_stop")},
		model.Element{ID: "u_stop", Kind: model.KindStop, Scope: UserScenario},

		// App behaviour for open.
		model.Element{ID: "a_start", Kind: model.KindStart, Scope: App, Successors: next("a_token")},
		model.Element{ID: "a_token", Name: "token", Kind: model.KindSetVariable, Scope: App,
			Variables: data("token", "Personal"), Successors: next("a_branch")},
		model.Element{ID: "a_branch", Name: "online?", Kind: model.KindBranch, Scope: App, Successors: next("a_upload", "a_cache")},
		model.Element{ID: "a_upload", Name: "upload", Kind: model.KindExternalCall, Scope: App,
			Signature: UploadSignature, Connector: UploadConnector, Target: "s_start", Successors: next("a_stop")},
		model.Element{ID: "a_cache", Name: "read cache", Kind: model.KindExternalCall, Scope: App,
			Signature: ReadSignature, Connector: CacheConnector, Target: "c_start", Successors: next("a_stop")},
		model.Element{ID: "a_stop", Kind: model.KindStop, Scope: App},

		// Server behaviour for upload.
		model.Element{ID: "s_start", Kind: model.KindStart, Scope: Server, Successors: next("s_save")},
		model.Element{ID: "s_save", Name: "save", Kind: model.KindExternalCall, Scope: Server,
			Signature: SaveSignature, Connector: StoreConnector, Target: "d_start", Successors: next("s_stop")},
		model.Element{ID: "s_stop", Kind: model.KindStop, Scope: Server},

		// Database behaviour for save.
		model.Element{ID: "d_start", Kind: model.KindStart, Scope: DB, Successors: next("d_write")},
		model.Element{ID: "d_write", Name: "write record", Kind: model.KindInternalAction, Scope: DB,
			Variables: data("record", "Personal"), Successors: next("d_stop")},
		model.Element{ID: "d_stop", Kind: model.KindStop, Scope: DB},

		// Cache behaviour for read.
		model.Element{ID: "c_start", Kind: model.KindStart, Scope: Cache, Successors: next("c_read")},
		model.Element{ID: "c_read", Name: "read entry", Kind: model.KindInternalAction, Scope: Cache,
			Variables: data("entry", "Anonymous"), Successors: next("c_stop")},
		model.Element{ID: "c_stop", Kind: model.KindStop, Scope: Cache},

		// Admin scenario.
		model.Element{ID: "m_start", Kind: model.KindStart, Scope: AdminScenario, Successors: next("m_check")},
		model.Element{ID: "m_check", Name: "health check", Kind: model.KindInternalAction, Scope: AdminScenario, Successors: next("m_stop")},
		model.Element{ID: "m_stop", Kind: model.KindStop, Scope: AdminScenario},
	)
	return b
}

// WarnApp builds the fixture model. Panics if the fixture is inconsistent.
func WarnApp() *model.Store {
	s, err := WarnAppBuilder().Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Entity returns an assumption entity referring to id.
func Entity(id ir.ElementID) ir.ModelEntity {
	return ir.ModelEntity{ID: string(id)}
}

// Assume builds an assumption over the given element ids.
func Assume(id, description string, ids ...ir.ElementID) *ir.Assumption {
	a := &ir.Assumption{ID: id, Description: description}
	for _, e := range ids {
		a.AffectedEntities = append(a.AffectedEntities, Entity(e))
	}
	return a
}
