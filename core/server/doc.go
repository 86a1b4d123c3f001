// Package server runs an http.Handler with graceful shutdown and
// production defaults.
//
// Basic usage with errgroup:
//
//	srv, err := server.NewFromConfig(cfg,
//		server.WithLogger(log),
//		server.WithOnShutdown(hub.Close),
//	)
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	return g.Wait()
//
// Stop calls http.Server.Shutdown and waits up to the shutdown timeout for
// in-flight handlers. Event streams never finish on their own, so register
// a hook with WithOnShutdown that ends them. Connections still open after
// the timeout are closed.
//
// Configuration is read from the environment through Config:
//
//	SERVER_ADDR              listen address (default ":8080")
//	SERVER_READ_TIMEOUT      request read timeout (default 15s)
//	SERVER_WRITE_TIMEOUT     response write timeout (default 15s)
//	SERVER_IDLE_TIMEOUT      keep-alive timeout (default 60s)
//	SERVER_SHUTDOWN_TIMEOUT  graceful shutdown timeout (default 30s)
//	SERVER_MAX_HEADER_BYTES  header size limit (default 1MB)
//	SERVER_TLS_CERT_FILE     certificate file; TLS needs both files
//	SERVER_TLS_KEY_FILE      private key file
package server
