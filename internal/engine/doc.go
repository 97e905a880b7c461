// Package engine is the entry point for applications that classify army
// lists.
//
// An Engine wires configuration, logging, telemetry, a knowledge bank and a
// classifier together, holds the current classification parameters (which
// may be swapped at runtime or hot-reloaded from the config file), and tags
// every log line with a per-engine session ID.
//
//	cfg, err := config.Load("archetype.yaml")
//	if err != nil {
//	    return err
//	}
//	eng, err := engine.New(cfg, engine.WithParser(parser))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close(ctx)
//
//	if err := eng.BulkLoad(ctx, seed); err != nil {
//	    return err
//	}
//	res, err := eng.ClassifyRaw(ctx, listText)
package engine
