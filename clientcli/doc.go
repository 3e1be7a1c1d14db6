// Package clientcli provides a client library for pmsgate servers.
//
// It logs in, keeps the returned session token in a profile, and issues
// authenticated calls against the gateway's routes. The package includes
// profile-based configuration for managing connections to multiple gateways.
//
// # Basic Usage
//
// Log in and fetch a resource:
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:8000"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	login, err := client.Login(ctx, "ada@example.com", password)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, _ = clientcli.New(&clientcli.Config{Endpoint: client.Endpoint(), Token: login.Token})
//	result, err := client.Get(ctx, "/people/7")
//
// # Profile Configuration
//
// Profiles live in ~/.pmsgate/config.yaml:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatResult(os.Stdout, result)
package clientcli
