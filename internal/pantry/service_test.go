package pantry

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/pantry/internal/inventory"
	"github.com/zombor/pantry/internal/receipt"
	"github.com/zombor/pantry/internal/scanning"
)

var _ = Describe("Service", func() {
	var (
		db      *mockDB
		storage *mockStorage
		reader  *mockReader
		source  *mockSource
		idGen   *mockIDGenerator
		timeSrc *mockTimeSource
		service *Service
		now     time.Time
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		reader = newMockReader()
		source = &mockSource{recipes: testRecipes}
		idGen = &mockIDGenerator{ids: []string{"test-id-1", "test-id-2"}}
		now = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		timeSrc = &mockTimeSource{now: now}
		service = NewServiceWithDeps(db, storage, reader, source, testEngine(), idGen, timeSrc)
	})

	Describe("ProcessReceipt", func() {
		var (
			lines  []receipt.RawLine
			result *ProcessResult
			err    error
		)

		BeforeEach(func() {
			lines = receipt.Lines("MİGROS\nSÜT 1 X 25.90\nEKMEK 7,50\nZXQW 3,00\nTOPLAM 36,40")
		})

		JustBeforeEach(func() {
			result, err = service.ProcessReceipt(context.Background(), "alice", lines)
		})

		When("processing succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("returns one record per product line", func() {
				Expect(result.ReceiptID).To(Equal("test-id-1"))
				Expect(result.Products).To(HaveLen(3))
				Expect(result.Products[0].CanonicalID).To(Equal("milk"))
				Expect(result.Products[0].Price).To(Equal(receipt.Cents(2590)))
				Expect(result.Products[1].CanonicalID).To(Equal("bread"))
			})

			It("reports unmatched products separately", func() {
				Expect(result.Unmatched).To(HaveLen(1))
				Expect(result.Unmatched[0].RawName).To(Equal("ZXQW"))
				Expect(result.Unmatched[0].NeedsReview).To(BeTrue())
			})

			It("summarizes the receipt", func() {
				Expect(result.Summary.TotalLines).To(Equal(5))
				Expect(result.Summary.ProductLines).To(Equal(3))
				Expect(result.Summary.TotalMarkerLines).To(Equal(1))
				Expect(result.Summary.UnknownLines).To(Equal(1))
				Expect(result.Message).To(Equal("3 products detected, 1 need review"))
			})

			It("saves the receipt to the database", func() {
				rec, getErr := db.GetReceipt("test-id-1")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(rec.User).To(Equal("alice"))
				Expect(rec.Source).To(Equal(SourceText))
				Expect(rec.Total).To(Equal(receipt.Cents(3640)))
				Expect(rec.CreatedAt).To(Equal(now))
				Expect(rec.TextFile).To(Equal("test-id-1.txt"))
			})

			It("archives the receipt text", func() {
				Expect(storage.files).To(HaveKey("test-id-1.txt"))
				Expect(string(storage.files["test-id-1.txt"])).To(HavePrefix("MİGROS\nSÜT 1 X 25.90\n"))
			})

			It("merges matched products into the inventory", func() {
				items := db.inventories["alice"]
				Expect(items).To(HaveLen(2))
				Expect(items[0].CanonicalID).To(Equal("milk"))
				Expect(items[0].Quantity).To(Equal(1))
				Expect(items[0].SourceReceiptID).To(Equal("test-id-1"))
				Expect(items[0].EstimatedExpiry).To(Equal(time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC)))
				Expect(result.Inventory).To(HaveLen(2))
			})

			It("restocks on a second receipt", func() {
				_, err := service.ProcessReceipt(context.Background(), "alice", receipt.Lines("SÜT 2 X 25.90"))
				Expect(err).NotTo(HaveOccurred())
				items := db.inventories["alice"]
				Expect(items[0].Quantity).To(Equal(3))
				Expect(items[0].SourceReceiptID).To(Equal("test-id-2"))
			})
		})

		When("there are no lines", func() {
			BeforeEach(func() {
				lines = nil
			})

			It("returns ErrNoLines", func() {
				Expect(err).To(MatchError(receipt.ErrNoLines))
			})

			It("stores nothing", func() {
				Expect(db.receipts).To(BeEmpty())
				Expect(storage.files).To(BeEmpty())
			})
		})

		When("the receipt has no product lines", func() {
			BeforeEach(func() {
				lines = receipt.Lines("MİGROS\nTOPLAM 36,40")
			})

			It("still records the receipt", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Products).To(BeEmpty())
				Expect(result.Message).To(Equal("no products detected"))
				Expect(db.receipts).To(HaveKey("test-id-1"))
			})

			It("leaves the inventory untouched", func() {
				Expect(db.inventories).NotTo(HaveKey("alice"))
			})
		})

		When("storage save fails", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = errors.New("storage error")
				storage.saveErr = setupErr
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(setupErr))
			})

			It("does not save the receipt", func() {
				Expect(db.receipts).To(BeEmpty())
			})
		})

		When("database save fails", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = errors.New("db error")
				db.saveErr = setupErr
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(setupErr))
			})

			It("cleans up the archived text", func() {
				Expect(storage.files).NotTo(HaveKey("test-id-1.txt"))
			})

			It("does not touch the inventory", func() {
				Expect(db.inventories).NotTo(HaveKey("alice"))
			})
		})

		When("saving the inventory fails", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = errors.New("inventory error")
				db.saveInvErr = setupErr
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(setupErr))
			})

			It("removes the stored receipt", func() {
				Expect(db.receipts).To(BeEmpty())
			})

			It("cleans up the archived files", func() {
				Expect(storage.files).To(BeEmpty())
			})
		})

		When("the context is cancelled", func() {
			It("returns the context error", func() {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				_, err := service.ProcessReceipt(ctx, "alice", lines)
				Expect(err).To(MatchError(context.Canceled))
			})
		})
	})

	Describe("ScanReceipt", func() {
		var (
			filename string
			result   *ProcessResult
			err      error
		)

		BeforeEach(func() {
			filename = "my receipt (1).jpg"
		})

		JustBeforeEach(func() {
			result, err = service.ScanReceipt(context.Background(), "bob", filename, []byte("fake image data"), "image/jpeg")
		})

		When("scanning succeeds", func() {
			It("processes the recognized lines", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(reader.calls).To(Equal(1))
				Expect(result.Products).To(HaveLen(2))
				Expect(db.inventories["bob"]).To(HaveLen(2))
			})

			It("stores the original file with a sanitized name", func() {
				Expect(storage.files).To(HaveKey("test-id-1_my_receipt_1.jpg"))
				rec := db.receipts["test-id-1"]
				Expect(rec.Source).To(Equal(SourceScan))
				Expect(rec.Filename).To(Equal("test-id-1_my_receipt_1.jpg"))
				Expect(rec.ContentType).To(Equal("image/jpeg"))
			})
		})

		When("the reader fails", func() {
			BeforeEach(func() {
				reader.readErr = scanning.ErrNoText
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(scanning.ErrNoText))
			})

			It("stores nothing", func() {
				Expect(storage.files).To(BeEmpty())
				Expect(db.receipts).To(BeEmpty())
			})
		})

		When("database save fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("db error")
			})

			It("cleans up both files", func() {
				Expect(err).To(HaveOccurred())
				Expect(storage.files).To(BeEmpty())
			})
		})

		When("no reader is configured", func() {
			It("returns ErrScanningDisabled", func() {
				service = NewServiceWithDeps(db, storage, nil, source, testEngine(), idGen, timeSrc)
				_, err := service.ScanReceipt(context.Background(), "bob", "r.jpg", []byte("x"), "image/jpeg")
				Expect(err).To(MatchError(ErrScanningDisabled))
			})
		})
	})

	Describe("Recommend", func() {
		var (
			limit int
			recs  *Recommendations
			err   error
		)

		BeforeEach(func() {
			limit = 0
			db.inventories["alice"] = []inventory.Item{
				{CanonicalID: "bread", DisplayName: "Bread", Quantity: 1, EstimatedExpiry: now.AddDate(0, 0, 2)},
				{CanonicalID: "eggs", DisplayName: "Eggs", Quantity: 6, EstimatedExpiry: now.AddDate(0, 0, 1)},
				{CanonicalID: "milk", DisplayName: "Milk", Quantity: 1, EstimatedExpiry: now.AddDate(0, 0, 3)},
				{CanonicalID: "tomato", DisplayName: "Tomato", Quantity: 2, EstimatedExpiry: now.AddDate(0, 0, 5)},
				{CanonicalID: "rice", DisplayName: "Rice", Quantity: 0, EstimatedExpiry: now.AddDate(0, 0, 30)},
			}
		})

		JustBeforeEach(func() {
			recs, err = service.Recommend(context.Background(), "alice", limit)
		})

		It("asks the catalog only for items in stock", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(source.asked).To(ConsistOf("bread", "eggs", "milk", "tomato"))
		})

		It("ranks full coverage first", func() {
			Expect(recs.Recommendations).To(HaveLen(3))
			Expect(recs.Recommendations[0].RecipeID).To(Equal("french_toast"))
			Expect(recs.Recommendations[0].Coverage).To(Equal(1.0))
			Expect(recs.Recommendations[0].Rationale).To(ContainSubstring("Eggs expires in 1 day"))
		})

		It("reports what happened to each recipe", func() {
			Expect(recs.Summary.Considered).To(Equal(4))
			Expect(recs.Summary.Scored).To(Equal(3))
			Expect(recs.Summary.Excluded).To(Equal(1))
		})

		When("a limit is given", func() {
			BeforeEach(func() {
				limit = 1
			})

			It("caps the result", func() {
				Expect(recs.Recommendations).To(HaveLen(1))
			})
		})

		When("the inventory is empty", func() {
			BeforeEach(func() {
				delete(db.inventories, "alice")
			})

			It("returns no recommendations without asking the catalog", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(recs.Recommendations).To(BeEmpty())
				Expect(source.asked).To(BeNil())
			})
		})

		When("the catalog fails", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = errors.New("catalog down")
				source.fetchErr = setupErr
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(setupErr))
			})
		})
	})

	Describe("receipt access", func() {
		BeforeEach(func() {
			_, err := service.ScanReceipt(context.Background(), "bob", "r.png", []byte("png bytes"), "image/png")
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists a user's receipts", func() {
			receipts, err := service.ListReceipts("bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(1))

			receipts, err = service.ListReceipts("alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(BeEmpty())
		})

		It("returns the archived text", func() {
			data, err := service.GetReceiptText("test-id-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("SÜT 1 X 25.90"))
		})

		It("returns the uploaded file", func() {
			data, contentType, err := service.GetReceiptFile("test-id-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("png bytes")))
			Expect(contentType).To(Equal("image/png"))
		})

		It("returns ErrNotFound for unknown receipts", func() {
			_, err := service.GetReceipt("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("deletes the receipt and its files but keeps the inventory", func() {
			Expect(service.DeleteReceipt("test-id-1")).To(Succeed())
			Expect(db.receipts).To(BeEmpty())
			Expect(storage.files).To(BeEmpty())
			Expect(db.inventories["bob"]).To(HaveLen(2))
		})

		When("the database delete fails", func() {
			It("returns the error", func() {
				setupErr := errors.New("delete error")
				db.deleteErr = setupErr
				Expect(service.DeleteReceipt("test-id-1")).To(MatchError(setupErr))
			})
		})
	})

	Describe("sanitizeFilename", func() {
		DescribeTable("cleans names",
			func(in, want string) {
				Expect(sanitizeFilename(in)).To(Equal(want))
			},
			Entry("spaces", "my receipt.JPG", "my_receipt.jpg"),
			Entry("special characters", "fiş#1!.png", "fi1.png"),
			Entry("nothing left", "###.pdf", "receipt.pdf"),
			Entry("path components", "../../etc/passwd", "passwd"),
		)
	})
})
