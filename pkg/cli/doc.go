/*
Package cli provides helpers shared by the pizzeria commands.

Output Formatting:

Command results are rendered as aligned text or indented JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Text output expects a Report, a list of key/value lines.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.ShutdownContext(context.Background())
	defer stop()
*/
package cli
