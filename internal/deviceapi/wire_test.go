package deviceapi_test

import (
	"testing"

	"github.com/frahmantamala/access-bridge/internal/deviceapi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDeviceAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DeviceAPI Suite")
}

var _ = Describe("ParseRecordList", func() {
	It("should group indexed fields into one record per index", func() {
		body := "records[0].CardNo=1001\n" +
			"records[0].CreateTime=1718000000\n" +
			"records[0].Type=Entry\n" +
			"records[1].CardNo=1002\n" +
			"records[1].CreateTime=1718000060\n" +
			"records[1].Type=Exit\n"

		records := deviceapi.ParseRecordList(body)
		Expect(records).To(HaveLen(2))
		Expect(records[0]["CardNo"]).To(Equal("1001"))
		Expect(records[0]["Type"]).To(Equal("Entry"))
		Expect(records[1]["CardNo"]).To(Equal("1002"))
		Expect(records[1]["Type"]).To(Equal("Exit"))
	})

	It("should ignore summary lines that are not record fields", func() {
		body := "found=2\n" +
			"totalCount=57\n" +
			"records[0].CardNo=1001\n"

		records := deviceapi.ParseRecordList(body)
		Expect(records).To(HaveLen(1))
		Expect(records[0]).To(HaveLen(1))
	})

	It("should ignore lines without an equals sign", func() {
		body := "OK\nrecords[0].CardNo=1001\n"

		records := deviceapi.ParseRecordList(body)
		Expect(records).To(HaveLen(1))
	})

	It("should preserve first-appearance order for non-contiguous indices", func() {
		body := "records[7].CardNo=third\n" +
			"records[2].CardNo=first\n" +
			"records[5].CardNo=second\n" +
			"records[2].Type=Entry\n"

		records := deviceapi.ParseRecordList(body)
		Expect(records).To(HaveLen(3))
		Expect(records[0]["CardNo"]).To(Equal("third"))
		Expect(records[1]["CardNo"]).To(Equal("first"))
		Expect(records[1]["Type"]).To(Equal("Entry"))
		Expect(records[2]["CardNo"]).To(Equal("second"))
	})

	It("should keep values containing equals signs intact", func() {
		body := "records[0].Extra=a=b=c\n"

		records := deviceapi.ParseRecordList(body)
		Expect(records).To(HaveLen(1))
		Expect(records[0]["Extra"]).To(Equal("a=b=c"))
	})

	It("should return an empty slice for an empty body", func() {
		Expect(deviceapi.ParseRecordList("")).To(BeEmpty())
		Expect(deviceapi.ParseRecordList("\n\n")).To(BeEmpty())
	})

	It("should reject malformed record keys", func() {
		body := "records[x].CardNo=1001\n" +
			"records[0]=bare\n" +
			"records[0].=1001\n" +
			"records[1].CardNo=ok\n"

		records := deviceapi.ParseRecordList(body)
		Expect(records).To(HaveLen(1))
		Expect(records[0]["CardNo"]).To(Equal("ok"))
	})
})
