package engine

import "testing"

func BenchmarkMatch(b *testing.B) {
	var splits []Split
	splits = append(splits, master("base-master.apk"))
	abis := []string{"arm64-v8a", "armeabi-v7a", "x86", "x86_64"}
	for i, abi := range abis {
		alts := append(append([]string{}, abis[:i]...), abis[i+1:]...)
		splits = append(splits, abiSplit("base-"+abi+".apk", abi, alts...))
	}
	for _, lang := range []string{"en", "fr", "de", "ja"} {
		splits = append(splits, langSplit("base-"+lang+".apk", []string{lang}))
	}
	archive := splitArchive(module("base", DeliveryInstallTime, splits...))
	m, err := NewApkMatcher(mustDevice(DeviceSpec{
		SdkVersion:       33,
		SupportedAbis:    []string{"arm64-v8a", "armeabi-v7a"},
		SupportedLocales: []string{"en-US"},
	}), Options{})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Match(archive)
	}
}
