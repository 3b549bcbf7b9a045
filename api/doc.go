// Package api
// Author: momentics <momentics@gmail.com>
//
// Contract layer for hioload-iotlb: mapping handles, invalidation domains,
// and the collaborator interfaces (mapper, invalidation backend, recycler,
// arena) the coordinator and release policies are wired against.
//
// Everything here is either plain data or a pure interface; no package in
// the module is imported from api.
package api
