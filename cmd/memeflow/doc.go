// memeflow 是把故事文本转换为表情包图像序列的命令行工具。
//
// 子命令 generate 读取故事文本（--story 或 --file 二选一），
// 经叙事分析拆解为固定的九个节点，再并发生成图像写入会话目录。
// 部分图像失败不影响退出码；分析失败或全批失败时以非零码退出。
package main
