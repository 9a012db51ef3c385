// Command litescan answers read-only queries against a SQLite database
// file by decoding the file format directly; no database engine is linked.
package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/litescan/litescan/conf"
	"github.com/litescan/litescan/logger"
	"github.com/litescan/litescan/sqlite"
	"github.com/litescan/litescan/sqlite/sqlparser"
)

var version = "0.1.0"

// CLI defines the command-line interface.
var CLI struct {
	Config string `name:"config" short:"c" help:"Path to ini config file." type:"existingfile" optional:""`

	Info    InfoCmd    `cmd:"" help:"Print database header summary."`
	Tables  TablesCmd  `cmd:"" help:"List user table names."`
	Query   QueryCmd   `cmd:"" help:"Run a read-only SELECT statement."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// InfoCmd prints the page size and table count.
type InfoCmd struct {
	Database string `arg:"" help:"Path to the database file." type:"existingfile"`
}

func (c *InfoCmd) Run(cfg *conf.Cfg) error {
	session, err := sqlite.Open(c.Database, cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	info, err := session.Info()
	if err != nil {
		return err
	}
	fmt.Printf("database page size: %d\n", info.PageSize)
	fmt.Printf("number of tables: %d\n", info.NumTables)
	return nil
}

// TablesCmd prints the user table names on one line.
type TablesCmd struct {
	Database string `arg:"" help:"Path to the database file." type:"existingfile"`
}

func (c *TablesCmd) Run(cfg *conf.Cfg) error {
	session, err := sqlite.Open(c.Database, cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	tables, err := session.Tables()
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(tables, " "))
	return nil
}

// QueryCmd parses and executes a SELECT statement, printing one
// pipe-delimited line per row.
type QueryCmd struct {
	Database string `arg:"" help:"Path to the database file." type:"existingfile"`
	SQL      string `arg:"" help:"SELECT statement to execute."`
}

func (c *QueryCmd) Run(cfg *conf.Cfg) error {
	stmt, err := sqlparser.ParseSelect(c.SQL)
	if err != nil {
		return err
	}

	session, err := sqlite.Open(c.Database, cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	result, err := session.ExecuteSelect(stmt)
	if err != nil {
		return err
	}
	for _, row := range result.Rows {
		fields := make([]string, len(row))
		for i, value := range row {
			fields[i] = value.String()
		}
		fmt.Println(strings.Join(fields, "|"))
	}
	return nil
}

// VersionCmd prints the tool version.
type VersionCmd struct{}

func (c *VersionCmd) Run(_ *conf.Cfg) error {
	fmt.Println("litescan " + version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("litescan"),
		kong.Description("Read-only structural and row-level queries against SQLite database files."),
		kong.UsageOnError(),
	)

	cfg := conf.NewCfg()
	if CLI.Config != "" {
		if err := cfg.Load(CLI.Config); err != nil {
			ctx.FatalIfErrorf(err)
		}
	}
	if err := logger.InitLogger(cfg.LogConfig()); err != nil {
		ctx.FatalIfErrorf(err)
	}

	ctx.FatalIfErrorf(ctx.Run(cfg))
}
