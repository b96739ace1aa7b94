// Copyright (c) MemeFlow Authors.
// Licensed under the MIT License.

/*
Package config 提供 MemeFlow 的统一配置体系。

# 概述

配置在进程启动时构造一次，随后按引用传递给图像执行器和工作流控制器，
避免在任意位置读取环境变量。

# 配置优先级

默认值 → YAML 文件 → 环境变量（MEMEFLOW_ 前缀）→ OPENAI_API_KEY 回退

# 核心类型

  - Config         — 完整配置（OpenAI / Image / Pipeline / Log）
  - Loader         — Builder 模式加载器（WithConfigPath / WithEnvPrefix / WithValidator）
  - DefaultConfig  — 所有配置项的合理默认值

# 约束

  - OpenAI API Key 为必填项，缺失时 Validate 返回 MISSING_CREDENTIAL
  - 并发上限钳制在 [1, MaxWorkers]，远端 API 存在未公开的速率限制
*/
package config
