package main

import (
	"log"
	"os"
	"strings"

	"wildtrack-api/internal/config"
	"wildtrack-api/internal/database"

	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <migration_file.sql> [...]", os.Args[0])
	}

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	for _, migrationFile := range os.Args[1:] {
		sqlContent, err := os.ReadFile(migrationFile)
		if err != nil {
			log.Fatalf("Failed to read migration file %s: %v", migrationFile, err)
		}

		statements := splitStatements(string(sqlContent))
		if len(statements) == 0 {
			log.Fatalf("Migration file %s contains no executable statements", migrationFile)
		}

		log.Printf("Applying %s (%d statements)", migrationFile, len(statements))

		for i, stmt := range statements {
			if _, err := db.Exec(stmt); err != nil {
				log.Fatalf("Failed to execute statement %d of %s: %v", i+1, migrationFile, err)
			}
		}
	}

	log.Println("Migrations applied")
}

// splitStatements 把迁移文件拆成可执行语句
// 先逐行剥掉 -- 注释行再按分号拆分，语句前的注释不会把整条语句丢掉
func splitStatements(sqlContent string) []string {
	var sb strings.Builder
	for _, line := range strings.Split(sqlContent, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	var statements []string
	for _, stmt := range strings.Split(sb.String(), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}

	return statements
}
