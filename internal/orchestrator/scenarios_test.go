package orchestrator

import (
	"context"
	"errors"
	"path/filepath"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/schemagate/migrator/pkg/errutil"
)

var errSyntaxError = errors.New("syntax error near SELECT")

var _ = Describe("ExecuteMigrations", func() {
	var (
		dir  string
		mock sqlmock.Sqlmock
		orch *Orchestrator
	)

	BeforeEach(func() {
		dir = scenarioT.TempDir()
		registry, m := newHarness(scenarioT)
		mock = m
		orch = newTestOrchestrator(registry)
	})

	config := func() Config {
		return Config{DBType: fakeDialectName, ConnectionString: "x", MigrationsPath: dir}
	}

	Context("mixed clean apply", func() {
		It("applies every pending job in ascending version order", func() {
			writeSQLFile(scenarioT, dir, "202601020000_second.sql")
			writeSQLFile(scenarioT, dir, "202601010000_first.sql")

			mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"Version"}))
			for range []int{1, 2} {
				mock.ExpectBegin()
				mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			}

			Expect(orch.ExecuteMigrations(context.Background(), config())).To(Succeed())
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})
	})

	Context("rerun idempotence", func() {
		It("skips a version already recorded by a previous run", func() {
			writeSQLFile(scenarioT, dir, "202601010000_first.sql")

			mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"Version"}).AddRow(uint64(202601010000)))

			Expect(orch.ExecuteMigrations(context.Background(), config())).To(Succeed())
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})
	})

	Context("out-of-order application", func() {
		It("warns but still applies a version below the current max", func() {
			writeSQLFile(scenarioT, dir, "202601010000_old.sql")

			mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"Version"}).AddRow(uint64(202601020000)))
			mock.ExpectBegin()
			mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec("INSERT INTO").WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectCommit()

			Expect(orch.ExecuteMigrations(context.Background(), config())).To(Succeed())
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})
	})

	Context("failure halts the run", func() {
		It("rolls back and never begins a later job", func() {
			writeSQLFile(scenarioT, dir, "202601010000_first.sql")
			writeSQLFile(scenarioT, dir, "202601020000_second.sql")

			mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"Version"}))
			mock.ExpectBegin()
			mock.ExpectExec("SELECT 1").WillReturnError(errSyntaxError)
			mock.ExpectRollback()

			err := orch.ExecuteMigrations(context.Background(), config())
			Expect(err).To(HaveOccurred())
			errutil.AssertErrorCode(scenarioT, err, errutil.CodeMigrationFailed)
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})
	})

	Context("empty and missing directories", func() {
		It("treats an empty directory as a no-op success", func() {
			Expect(orch.ExecuteMigrations(context.Background(), config())).To(Succeed())
		})

		It("fails when the migrations directory doesn't exist", func() {
			cfg := config()
			cfg.MigrationsPath = filepath.Join(dir, "gone")

			err := orch.ExecuteMigrations(context.Background(), cfg)
			Expect(err).To(HaveOccurred())
			errutil.AssertErrorCode(scenarioT, err, errutil.CodeDirectoryMissing)
		})
	})
})
