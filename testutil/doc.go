// Package testutil provides testing utilities for vectis.
//
// This package is intended for use in tests only. It provides a seeded
// random vector generator and an in-memory fake of the remote store's HTTP
// contract.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vs := rng.Vectors(100, 128)     // uniform [-1, 1)
//	us := rng.UnitVectors(100, 128) // L2-normalized
//
// # Fake Remote Store
//
//	srv := testutil.NewServer(t)
//	client, err := vectis.New(ctx, srv.URL())
//
// Routes can be replaced to inject faults:
//
//	srv.Override("POST /api/batch_get", func(w http.ResponseWriter, r *http.Request) {
//	    w.Write([]byte(`{"values":[]}`))
//	})
package testutil
